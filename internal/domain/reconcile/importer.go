package reconcile

import (
	"context"
	"fmt"

	"crownsync/internal/domain/catalog"
)

// importVideos создает локальные клипы для видео без локальной записи
func (e *Engine) importVideos(ctx context.Context, pc *PassContext, report *Report) {
	sessionViews := make(map[int64]SessionView, len(pc.SessionViews))
	for _, sv := range pc.SessionViews {
		sessionViews[sv.SessionID] = sv
	}

	for i := range pc.Videos {
		v := &pc.Videos[i]
		if v.Linked != nil {
			continue
		}
		if ctx.Err() != nil {
			return
		}

		clip, err := e.importVideo(ctx, pc, *v, sessionViews[v.SessionID], report)
		if err != nil {
			e.log.Warn("video import failed", "key", v.Key, "error", err)
			report.fail("import", v.Key, err)
			continue
		}
		v.Linked = clip
		report.Imported++
	}
}

func (e *Engine) importVideo(ctx context.Context, pc *PassContext, v VideoView, sv SessionView, report *Report) (*catalog.VideoClip, error) {
	session, created, err := e.ResolveOrCreateSession(ctx, pc, SessionRequest{
		RemoteID: v.SessionID,
		Name:     sv.Title,
		Place:    sv.Place,
		Coach:    sv.Coach,
		Type:     sv.Type,
		Date:     sv.Date,
	})
	if err != nil {
		return nil, fmt.Errorf("resolve session: %w", err)
	}
	if created {
		report.SessionsCreated++
	}

	clip := catalog.VideoClip{
		SessionID: session.ID,
		ClipPath:  v.Key,
		Source:    catalog.SourceRemote,
	}
	applyScalars(&clip, v)

	clip.ID, err = e.repo.InsertVideoClip(ctx, clip)
	if err != nil {
		return nil, fmt.Errorf("insert clip: %w", err)
	}

	if v.Sidecar == nil || v.SidecarObject == nil {
		return &clip, nil
	}

	// clip уже вставлен, при ошибке водяной знак остается 0 и следующий проход повторит запись
	if err := e.writeSidecar(ctx, &clip, v); err != nil {
		report.warn("import_metadata", v.Key, err)
		return &clip, nil
	}
	clip.LastSyncUTC = v.SidecarObject.LastModified.Unix()
	if err := e.repo.UpdateVideoClip(ctx, clip); err != nil {
		return nil, fmt.Errorf("update clip %d: %w", clip.ID, err)
	}
	return &clip, nil
}
