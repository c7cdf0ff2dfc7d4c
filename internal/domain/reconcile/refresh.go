package reconcile

import (
	"context"
	"fmt"
	"strings"

	"crownsync/internal/domain/catalog"
)

// pushSessionUpdates переносит поля из метаданных сессий в локальные сессии,
// у которых есть связанные видео. Каждая сессия сохраняется не больше одного раза.
func (e *Engine) pushSessionUpdates(ctx context.Context, pc *PassContext, report *Report) {
	// локальная сессия -> sessionId на сервере
	targets := make(map[int64]int64)
	var order []int64
	for _, v := range pc.Videos {
		if v.Linked == nil {
			continue
		}
		if _, ok := targets[v.Linked.SessionID]; ok {
			continue
		}
		targets[v.Linked.SessionID] = v.SessionID
		order = append(order, v.Linked.SessionID)
	}

	for _, localID := range order {
		if ctx.Err() != nil {
			return
		}
		sidecar := pc.SessionSidecar(targets[localID])
		if sidecar == nil {
			continue
		}

		session, err := e.repo.GetSessionByID(ctx, localID)
		if err != nil {
			report.warn("session_update", fmt.Sprintf("session %d", localID), err)
			continue
		}

		changed := mergeText(&session.Name, sidecar.SessionName)
		changed = mergeText(&session.Place, sidecar.Place) || changed
		changed = mergeText(&session.Coach, sidecar.Coach) || changed
		changed = mergeText(&session.Type, sidecar.SessionType) || changed
		if d, ok := sidecar.Date(); ok && !d.Equal(session.Date) {
			session.Date = d
			changed = true
		}
		if !changed {
			continue
		}

		if err := e.repo.SaveSession(ctx, session); err != nil {
			report.warn("session_update", fmt.Sprintf("session %d", localID), err)
			continue
		}
		report.SessionsUpdated++
	}
}

// mergeText перезаписывает local непустым отличающимся значением
func mergeText(local *string, value string) bool {
	value = strings.TrimSpace(value)
	if value == "" || value == *local {
		return false
	}
	*local = value
	return true
}

// refreshLinked обновляет связанные клипы, чьи метаданные новее водяного знака
func (e *Engine) refreshLinked(ctx context.Context, pc *PassContext, linked map[int64]struct{}, report *Report) {
	for _, v := range pc.Videos {
		if v.Linked == nil || v.SidecarObject == nil {
			continue
		}
		if _, ok := linked[v.Linked.ID]; !ok {
			continue
		}
		if ctx.Err() != nil {
			return
		}

		modified := v.SidecarObject.LastModified.Unix()
		if modified <= v.Linked.LastSyncUTC {
			continue
		}
		if v.Sidecar == nil {
			e.log.Debug("newer sidecar unavailable, clip kept", "key", v.Key)
			continue
		}

		if err := e.refreshClip(ctx, *v.Linked, v, modified); err != nil {
			e.log.Warn("clip refresh failed", "key", v.Key, "error", err)
			report.fail("refresh", v.Key, err)
			continue
		}
		report.Updated++
	}
}

func (e *Engine) refreshClip(ctx context.Context, clip catalog.VideoClip, v VideoView, modified int64) error {
	if err := e.repo.DeleteEventInputsByVideo(ctx, clip.ID); err != nil {
		return fmt.Errorf("delete inputs: %w", err)
	}
	if err := e.repo.DeleteTimingEventsByVideo(ctx, clip.ID); err != nil {
		return fmt.Errorf("delete timing events: %w", err)
	}
	if err := e.writeSidecar(ctx, &clip, v); err != nil {
		return err
	}

	clip.LastSyncUTC = modified
	if err := e.repo.UpdateVideoClip(ctx, clip); err != nil {
		return fmt.Errorf("update clip %d: %w", clip.ID, err)
	}
	return nil
}
