package reconcile

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/exp/slog"
	"golang.org/x/sync/errgroup"

	"crownsync/internal/domain/remote"
)

// DeleteRemoteSession удаляет все объекты сессии на сервере и локальные клипы,
// чьи видео удалены успешно. canWrite проверяется вызывающим по роли пользователя.
func (e *Engine) DeleteRemoteSession(ctx context.Context, sessionID int64, canWrite bool) (*DeletionReport, error) {
	if !canWrite {
		return nil, ErrForbidden
	}
	if sessionID <= 0 {
		return nil, fmt.Errorf("invalid session id %d", sessionID)
	}
	if err := e.acquire(); err != nil {
		return nil, err
	}
	defer e.release()

	if !e.authenticated() {
		return nil, ErrNotAuthenticated
	}

	log := e.log.With(slog.Int64("session_id", sessionID))
	prefix := remote.SessionPrefix(sessionID)

	objects, err := e.lister.List(ctx, prefix, e.config.PageSize)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", prefix, err)
	}

	keys := make([]string, 0, len(objects))
	for _, o := range objects {
		if !o.IsFolder {
			keys = append(keys, o.Key)
		}
	}

	report := &DeletionReport{SessionID: sessionID, Attempted: len(keys), Errors: []ItemError{}}
	results := make([]error, len(keys))

	var g errgroup.Group
	g.SetLimit(e.config.Concurrency)
	for i, key := range keys {
		g.Go(func() error {
			results[i] = e.deleteObject(ctx, key)
			return nil
		})
	}
	_ = g.Wait()

	deletedVideos := make(map[string]struct{})
	for i, key := range keys {
		if results[i] != nil {
			report.Failed++
			report.Errors = append(report.Errors, ItemError{Operation: "delete_object", Key: key, Err: results[i].Error()})
			continue
		}
		report.Deleted++
		if k, ok := remote.ParseKey(key); ok && k.Kind == remote.KindVideo {
			deletedVideos[k.Path] = struct{}{}
		}
	}

	e.removeDeletedClips(ctx, sessionID, deletedVideos, report)
	e.metrics.observeDeletion(report)

	log.Info("remote session deleted",
		"attempted", report.Attempted,
		"deleted", report.Deleted,
		"failed", report.Failed,
		"clips_removed", report.ClipsRemoved,
	)

	if report.Failed > 0 {
		return report, fmt.Errorf("%w: %d of %d failed", ErrPartialDeletion, report.Failed, report.Attempted)
	}
	return report, nil
}

func (e *Engine) deleteObject(ctx context.Context, key string) error {
	ok, err := e.store.DeleteFile(ctx, key)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("object not deleted")
	}
	return nil
}

// removeDeletedClips удаляет локальные клипы только для видео, удаленных на сервере
func (e *Engine) removeDeletedClips(ctx context.Context, sessionID int64, deleted map[string]struct{}, report *DeletionReport) {
	clips, err := e.repo.GetAllVideoClips(ctx)
	if err != nil {
		report.Errors = append(report.Errors, ItemError{Operation: "list_clips", Err: err.Error()})
		return
	}

	sessions := map[int64]struct{}{sessionID: {}}
	for _, c := range clips {
		if _, ok := deleted[remote.Normalize(c.ClipPath)]; !ok {
			continue
		}
		if err := e.removeClip(ctx, c); err != nil {
			report.Errors = append(report.Errors, ItemError{Operation: "delete_clip", Key: c.ClipPath, Err: err.Error()})
			continue
		}
		report.ClipsRemoved++
		sessions[c.SessionID] = struct{}{}
	}

	for id := range sessions {
		removed, err := e.removeSessionIfEmpty(ctx, id)
		if err != nil {
			report.Errors = append(report.Errors, ItemError{Operation: "delete_session", Key: fmt.Sprintf("session %d", id), Err: err.Error()})
			continue
		}
		if removed && id == sessionID {
			report.SessionRemoved = true
		}
	}
}
