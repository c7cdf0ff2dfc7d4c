package remote

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/exp/slog"
)

const defaultPageSize = 1000

// Lister обходит префикс хранилища постранично
type Lister struct {
	store ObjectStore
	log   *slog.Logger
}

func NewLister(store ObjectStore, log *slog.Logger) *Lister {
	return &Lister{
		store: store,
		log:   log.With(slog.String("component", "remote_lister")),
	}
}

// List возвращает все объекты под prefix. maxItems ограничивает размер
// одной страницы; страницы запрашиваются пока листинг не будет исчерпан.
func (l *Lister) List(ctx context.Context, prefix string, maxItems int) ([]ObjectDescriptor, error) {
	if maxItems <= 0 {
		maxItems = defaultPageSize
	}

	var (
		objects []ObjectDescriptor
		marker  string
		pages   int
	)
	for {
		page, err := l.store.ListFiles(ctx, prefix, marker, maxItems)
		if err != nil {
			return nil, fmt.Errorf("%w: list %q: %v", ErrTransport, prefix, err)
		}
		pages++
		objects = append(objects, page.Objects...)

		if !page.IsTruncated {
			break
		}
		if page.NextMarker == "" || page.NextMarker == marker {
			return nil, fmt.Errorf("%w: prefix %q marker %q", ErrMarkerStalled, prefix, marker)
		}
		marker = page.NextMarker

		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	l.log.Debug("listing complete", "prefix", prefix, "objects", len(objects), "pages", pages)
	return objects, nil
}

// Classify раскладывает листинг на видео, метаданные видео, метаданные
// сессий и миниатюры. Ключи вне грамматики пропускаются.
func Classify(objects []ObjectDescriptor) *Catalog {
	c := &Catalog{
		VideoSidecars: make(map[VideoRef]Entry),
		Thumbnails:    make(map[VideoRef]Entry),
	}
	seenVideos := make(map[string]struct{})

	for _, obj := range objects {
		if obj.IsFolder {
			continue
		}

		k := Normalize(obj.Key)
		var want Kind
		switch {
		case strings.HasSuffix(k, ".mp4") && !strings.Contains(k, "/metadata/"):
			want = KindVideo
		case strings.HasSuffix(k, ".json") && strings.Contains(k, "/metadata/"):
			want = KindVideoMetadata
		case strings.HasSuffix(k, sessionSidecarName):
			want = KindSessionMetadata
		case strings.HasSuffix(k, ".jpg") && strings.Contains(k, "/thumbnails/"):
			want = KindThumbnail
		default:
			c.Skipped++
			continue
		}

		key, ok := ParseKey(k)
		if !ok || key.Kind != want {
			c.Skipped++
			continue
		}
		entry := Entry{Key: key, Object: obj}

		// первый найденный дубликат (с корневым префиксом или без) побеждает
		switch want {
		case KindVideo:
			if _, dup := seenVideos[key.Path]; dup {
				continue
			}
			seenVideos[key.Path] = struct{}{}
			c.Videos = append(c.Videos, entry)
		case KindVideoMetadata:
			if _, dup := c.VideoSidecars[key.Ref()]; !dup {
				c.VideoSidecars[key.Ref()] = entry
			}
		case KindSessionMetadata:
			c.SessionSidecars = append(c.SessionSidecars, entry)
		case KindThumbnail:
			if _, dup := c.Thumbnails[key.Ref()]; !dup {
				c.Thumbnails[key.Ref()] = entry
			}
		}
	}

	return c
}
