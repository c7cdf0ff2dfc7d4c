package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"crownsync/internal/domain/catalog"
	"crownsync/internal/domain/remote"
)

// FindOrphans клипы с сервера, которых больше нет в листинге. Учитываются
// только клипы внутри префикса прохода.
func FindOrphans(clips []catalog.VideoClip, prefix string, present map[string]struct{}) []catalog.VideoClip {
	scope := remote.Normalize(prefix)
	var orphans []catalog.VideoClip
	for _, c := range clips {
		if !c.IsRemote() {
			continue
		}
		path := remote.Normalize(c.ClipPath)
		if !strings.HasPrefix(path, scope) {
			continue
		}
		if _, ok := present[path]; ok {
			continue
		}
		orphans = append(orphans, c)
	}
	return orphans
}

func (e *Engine) removeOrphans(ctx context.Context, pc *PassContext, report *Report) error {
	clips, err := e.repo.GetAllVideoClips(ctx)
	if err != nil {
		return fmt.Errorf("list local clips: %w", err)
	}

	orphans := FindOrphans(clips, pc.Prefix, pc.Catalog.VideoPaths())
	if len(orphans) == 0 {
		return nil
	}
	e.log.Info("removing orphaned clips", "count", len(orphans))

	var sessions []int64
	seen := make(map[int64]struct{})
	for _, c := range orphans {
		if err := e.removeClip(ctx, c); err != nil {
			report.fail("orphan", c.ClipPath, err)
			continue
		}
		report.Orphaned++
		if _, ok := seen[c.SessionID]; !ok {
			seen[c.SessionID] = struct{}{}
			sessions = append(sessions, c.SessionID)
		}
	}

	for _, id := range sessions {
		removed, err := e.removeSessionIfEmpty(ctx, id)
		if err != nil {
			report.warn("orphan_session", fmt.Sprintf("session %d", id), err)
			continue
		}
		if removed {
			report.SessionsRemoved++
		}
	}
	return nil
}

// removeClip удаляет клип и его локальную миниатюру
func (e *Engine) removeClip(ctx context.Context, c catalog.VideoClip) error {
	if c.LocalThumbnailPath != "" && e.thumbs != nil {
		if err := e.thumbs.Remove(c.LocalThumbnailPath); err != nil {
			e.log.Warn("thumbnail not removed", "path", c.LocalThumbnailPath, "error", err)
		}
	}
	if err := e.repo.DeleteVideoClip(ctx, c.ID); err != nil {
		return fmt.Errorf("delete clip %d: %w", c.ID, err)
	}
	return nil
}

func (e *Engine) removeSessionIfEmpty(ctx context.Context, sessionID int64) (bool, error) {
	n, err := e.repo.CountVideoClipsBySession(ctx, sessionID)
	if err != nil {
		return false, fmt.Errorf("count clips: %w", err)
	}
	if n > 0 {
		return false, nil
	}
	if _, err := e.repo.GetSessionByID(ctx, sessionID); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if err := e.repo.DeleteSession(ctx, sessionID); err != nil {
		return false, fmt.Errorf("delete session: %w", err)
	}
	return true, nil
}
