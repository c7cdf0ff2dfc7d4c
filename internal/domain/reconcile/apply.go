package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"crownsync/internal/domain/catalog"
)

// writeSidecar переносит метаданные видео в каталог. Отметки и события
// добавляются, удалять старые должен вызывающий.
func (e *Engine) writeSidecar(ctx context.Context, clip *catalog.VideoClip, v VideoView) error {
	sc := v.Sidecar

	if a := sc.Athlete; a != nil && a.ID > 0 {
		athlete := catalog.Athlete{
			ID:       a.ID,
			Name:     a.Nombre,
			Surname:  a.Apellido,
			Category: a.Category,
		}
		if a.CategoriaID != nil {
			athlete.CategoryID = *a.CategoriaID
		}
		if a.Favorite != nil {
			athlete.Favorite = *a.Favorite != 0
		}
		if err := e.repo.SaveAthlete(ctx, athlete); err != nil {
			return fmt.Errorf("save athlete %d: %w", a.ID, err)
		}
		clip.AthleteID = a.ID
	}

	for _, t := range v.Tags {
		if err := e.repo.SaveTag(ctx, t); err != nil {
			return fmt.Errorf("save tag %d: %w", t.ID, err)
		}
	}
	for _, et := range v.EventTags {
		if err := e.ensureEventTag(ctx, et); err != nil {
			return err
		}
	}

	for _, in := range sc.Inputs {
		input := catalog.EventInput{
			VideoID:     clip.ID,
			SessionID:   clip.SessionID,
			InputTypeID: in.InputTypeID,
			IsEvent:     bool(in.IsEvent),
			Value:       in.InputValue,
		}
		if in.TimestampMs != nil {
			input.TimestampMs = *in.TimestampMs
		}
		if err := e.repo.SaveEventInput(ctx, input); err != nil {
			return fmt.Errorf("save input for clip %d: %w", clip.ID, err)
		}
	}

	if len(sc.TimingEvents) > 0 {
		events := make([]catalog.TimingEvent, 0, len(sc.TimingEvents))
		for _, te := range sc.TimingEvents {
			payload, err := json.Marshal(te)
			if err != nil {
				return fmt.Errorf("encode timing event: %w", err)
			}
			events = append(events, catalog.TimingEvent{
				VideoID:     clip.ID,
				Type:        te.EventType,
				TimestampMs: te.TimestampMs,
				Payload:     string(payload),
			})
		}
		if err := e.repo.InsertTimingEvents(ctx, events); err != nil {
			return fmt.Errorf("insert timing events for clip %d: %w", clip.ID, err)
		}
	}

	applyScalars(clip, v)
	return nil
}

func (e *Engine) ensureEventTag(ctx context.Context, et EventTagCount) error {
	_, err := e.repo.GetEventTagByID(ctx, et.InputTypeID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, catalog.ErrNotFound) {
		return fmt.Errorf("get event tag %d: %w", et.InputTypeID, err)
	}
	if err := e.repo.InsertEventTag(ctx, catalog.EventTag{ID: et.InputTypeID, Name: et.Name}); err != nil {
		return fmt.Errorf("insert event tag %d: %w", et.InputTypeID, err)
	}
	return nil
}

// applyScalars обновляет поля клипа из представления
func applyScalars(clip *catalog.VideoClip, v VideoView) {
	clip.ComparisonName = v.DisplayName
	clip.Section = v.Section
	clip.ClipSize = v.Size
	if clip.CreationDate == 0 && !v.LastModified.IsZero() {
		clip.CreationDate = v.LastModified.Unix()
	}
	if v.ThumbnailKey != "" {
		clip.ThumbnailPath = v.ThumbnailKey
	}

	if v.Sidecar == nil {
		return
	}
	info := v.Sidecar.Video
	if info.ClipDuration != nil {
		clip.ClipDuration = *info.ClipDuration
	}
	if info.ClipSize != nil {
		clip.ClipSize = *info.ClipSize
	}
	if created, ok := info.Created(); ok {
		clip.CreationDate = created
	}
	if info.ThumbnailPath != "" {
		clip.ThumbnailPath = info.ThumbnailPath
	}
}
