package reconcile

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"crownsync/internal/domain/catalog"
	"crownsync/internal/domain/metadata"
	"crownsync/internal/domain/remote"
)

// VideoView видео на сервере, объединенное с метаданными и локальной записью
type VideoView struct {
	SessionID    int64
	VideoID      int64
	Key          string
	Size         int64
	LastModified time.Time
	DisplayName  string
	Section      int
	Tags         []catalog.Tag
	EventTags    []EventTagCount

	Sidecar *metadata.VideoSidecar
	// SidecarObject дескриптор файла метаданных, nil если его нет в листинге
	SidecarObject *remote.ObjectDescriptor
	ThumbnailKey  string
	Linked        *catalog.VideoClip
}

// EventTagCount тег-событие с числом отметок на видео
type EventTagCount struct {
	InputTypeID int64
	Name        string
	Count       int
}

// SessionView сессия на сервере
type SessionView struct {
	SessionID int64
	Title     string
	Place     string
	Coach     string
	Type      string
	Date      time.Time
	Videos    int
	Sidecar   *metadata.SessionSidecar
	Local     *catalog.Session
}

// FallbackSessionName имя сессии без метаданных
func FallbackSessionName(sessionID int64) string {
	return fmt.Sprintf("Sesión %d", sessionID)
}

// BuildVideoViews строит представления видео из листинга. localSessions нужны
// только для имени сессии в отображаемом имени видео.
func BuildVideoViews(pc *PassContext, clips []catalog.VideoClip, localSessions map[int64]catalog.Session) []VideoView {
	byPath := make(map[string]*catalog.VideoClip, len(clips))
	for i := range clips {
		path := remote.Normalize(clips[i].ClipPath)
		if path == "" {
			continue
		}
		if _, dup := byPath[path]; !dup {
			byPath[path] = &clips[i]
		}
	}

	views := make([]VideoView, 0, len(pc.Catalog.Videos))
	for _, e := range pc.Catalog.Videos {
		ref := e.Key.Ref()
		v := VideoView{
			SessionID:    e.Key.SessionID,
			VideoID:      e.Key.VideoID,
			Key:          e.Key.Path,
			Size:         e.Object.Size,
			LastModified: e.Object.LastModified,
			Linked:       byPath[e.Key.Path],
		}
		if sc, ok := pc.Catalog.VideoSidecars[ref]; ok {
			obj := sc.Object
			v.SidecarObject = &obj
		}
		if th, ok := pc.Catalog.Thumbnails[ref]; ok {
			v.ThumbnailKey = th.Key.Path
		}

		v.Sidecar = pc.VideoSidecars[ref]
		applyVideoSidecar(&v)

		var local *catalog.Session
		if v.Linked != nil {
			if s, ok := localSessions[v.Linked.SessionID]; ok {
				local = &s
			}
		}
		v.DisplayName = displayName(v, e.Key.FileName(), sessionTitle(v.SessionID, pc.SessionSidecar(v.SessionID), local))

		views = append(views, v)
	}
	return views
}

func applyVideoSidecar(v *VideoView) {
	if v.Sidecar == nil {
		return
	}
	if v.Sidecar.Video.Section != nil {
		v.Section = *v.Sidecar.Video.Section
	}
	v.Tags = plainTags(v.Sidecar)
	v.EventTags = eventTags(v.Sidecar)
}

// eventTags группирует отметки-события по типу в порядке первого появления
func eventTags(sc *metadata.VideoSidecar) []EventTagCount {
	names := tagNames(sc)
	index := make(map[int64]int)
	var out []EventTagCount
	for _, in := range sc.Inputs {
		if !in.IsEvent {
			continue
		}
		if i, ok := index[in.InputTypeID]; ok {
			out[i].Count++
			continue
		}
		index[in.InputTypeID] = len(out)
		out = append(out, EventTagCount{
			InputTypeID: in.InputTypeID,
			Name:        eventTagName(names, in.InputTypeID),
			Count:       1,
		})
	}
	return out
}

// plainTags теги из обычных отметок, только те, что есть в списке tags
func plainTags(sc *metadata.VideoSidecar) []catalog.Tag {
	names := tagNames(sc)
	seen := make(map[int64]struct{})
	var out []catalog.Tag
	for _, in := range sc.Inputs {
		if in.IsEvent {
			continue
		}
		name, ok := names[in.InputTypeID]
		if !ok {
			continue
		}
		if _, dup := seen[in.InputTypeID]; dup {
			continue
		}
		seen[in.InputTypeID] = struct{}{}
		out = append(out, catalog.Tag{ID: in.InputTypeID, Name: name})
	}
	return out
}

func tagNames(sc *metadata.VideoSidecar) map[int64]string {
	names := make(map[int64]string, len(sc.Tags))
	for _, t := range sc.Tags {
		if _, ok := names[t.ID]; !ok {
			names[t.ID] = t.Name
		}
	}
	return names
}

func eventTagName(names map[int64]string, id int64) string {
	if n := strings.TrimSpace(names[id]); n != "" {
		return n
	}
	return fmt.Sprintf("Evento %d", id)
}

// displayName: comparisonName, затем "атлет - сессия", затем имя файла
func displayName(v VideoView, fileName, session string) string {
	if v.Sidecar != nil {
		if n := strings.TrimSpace(v.Sidecar.Video.ComparisonName); n != "" {
			return n
		}
		if a := v.Sidecar.Athlete.DisplayName(); a != "" {
			return a + " - " + session
		}
	}
	return fileName
}

func sessionTitle(sessionID int64, sidecar *metadata.SessionSidecar, local *catalog.Session) string {
	if sidecar != nil {
		if n := strings.TrimSpace(sidecar.SessionName); n != "" {
			return n
		}
	}
	if local != nil {
		if n := strings.TrimSpace(local.DisplayName()); n != "" {
			return n
		}
	}
	return FallbackSessionName(sessionID)
}

// BuildSessionViews группирует представления видео по sessionId
func BuildSessionViews(pc *PassContext, videos []VideoView, localSessions map[int64]catalog.Session) []SessionView {
	index := make(map[int64]int)
	var out []SessionView
	for _, v := range videos {
		i, ok := index[v.SessionID]
		if !ok {
			i = len(out)
			index[v.SessionID] = i
			out = append(out, SessionView{SessionID: v.SessionID, Sidecar: pc.SessionSidecar(v.SessionID)})
		}
		sv := &out[i]
		sv.Videos++
		if v.LastModified.After(sv.Date) {
			sv.Date = v.LastModified
		}
		if sv.Local == nil && v.Linked != nil {
			if s, ok := localSessions[v.Linked.SessionID]; ok {
				sv.Local = &s
			}
		}
	}

	for i := range out {
		sv := &out[i]
		sv.Title = sessionTitle(sv.SessionID, sv.Sidecar, sv.Local)
		if sv.Sidecar != nil {
			if d, ok := sv.Sidecar.Date(); ok {
				sv.Date = d
			}
			sv.Place = strings.TrimSpace(sv.Sidecar.Place)
			sv.Coach = strings.TrimSpace(sv.Sidecar.Coach)
			sv.Type = strings.TrimSpace(sv.Sidecar.SessionType)
		}
		if sv.Local != nil {
			sv.Place = firstNonEmpty(sv.Place, sv.Local.Place)
			sv.Coach = firstNonEmpty(sv.Coach, sv.Local.Coach)
			sv.Type = firstNonEmpty(sv.Type, sv.Local.Type)
		}
	}

	sort.SliceStable(out, func(a, b int) bool { return out[a].SessionID < out[b].SessionID })
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
