package remote

import (
	"path"
	"strconv"
	"strings"
)

const (
	// RootPrefix исторический корень бакета, может предшествовать любому ключу
	RootPrefix = "CrownRFEP/"
	// SessionsPrefix корень всех сессий
	SessionsPrefix = "sessions/"

	sessionSidecarName = "session.json"
	videosDir          = "videos"
	metadataDir        = "metadata"
	thumbnailsDir      = "thumbnails"
)

// Kind тип объекта в хранилище, определяемый по ключу
type Kind int

const (
	KindUnknown Kind = iota
	KindVideo
	KindVideoMetadata
	KindSessionMetadata
	KindThumbnail
)

func (k Kind) String() string {
	switch k {
	case KindVideo:
		return "video"
	case KindVideoMetadata:
		return "video_metadata"
	case KindSessionMetadata:
		return "session_metadata"
	case KindThumbnail:
		return "thumbnail"
	default:
		return "unknown"
	}
}

// Key разобранный ключ объекта
type Key struct {
	Kind      Kind
	SessionID int64
	VideoID   int64
	// Path нормализованный ключ без корневого префикса
	Path string
}

// VideoRef идентифицирует видео внутри сессии
type VideoRef struct {
	SessionID int64
	VideoID   int64
}

// Ref возвращает пару (сессия, видео) для ключа
func (k Key) Ref() VideoRef {
	return VideoRef{SessionID: k.SessionID, VideoID: k.VideoID}
}

// FileName возвращает имя файла из ключа
func (k Key) FileName() string {
	return path.Base(k.Path)
}

// Normalize приводит ключ или локальный ClipPath к единому виду:
// прямые слэши, без ведущего слэша и без корневого префикса.
func Normalize(key string) string {
	k := strings.ReplaceAll(strings.TrimSpace(key), "\\", "/")
	k = strings.TrimLeft(k, "/")
	k = strings.TrimPrefix(k, RootPrefix)
	return k
}

// ParseKey разбирает ключ по грамматике:
//
//	sessions/{sessionId}/session.json
//	sessions/{sessionId}/videos/{videoId}.mp4
//	sessions/{sessionId}/metadata/{videoId}.json
//	sessions/{sessionId}/thumbnails/{videoId}.jpg
func ParseKey(key string) (Key, bool) {
	p := Normalize(key)
	parts := strings.Split(p, "/")
	if len(parts) < 3 || parts[0]+"/" != SessionsPrefix {
		return Key{}, false
	}

	sessionID, ok := parseID(parts[1])
	if !ok {
		return Key{}, false
	}

	if len(parts) == 3 {
		if parts[2] != sessionSidecarName {
			return Key{}, false
		}
		return Key{Kind: KindSessionMetadata, SessionID: sessionID, Path: p}, true
	}

	if len(parts) != 4 {
		return Key{}, false
	}

	var kind Kind
	var ext string
	switch parts[2] {
	case videosDir:
		kind, ext = KindVideo, ".mp4"
	case metadataDir:
		kind, ext = KindVideoMetadata, ".json"
	case thumbnailsDir:
		kind, ext = KindThumbnail, ".jpg"
	default:
		return Key{}, false
	}

	name, found := strings.CutSuffix(parts[3], ext)
	if !found {
		return Key{}, false
	}
	videoID, ok := parseID(name)
	if !ok {
		return Key{}, false
	}

	return Key{Kind: kind, SessionID: sessionID, VideoID: videoID, Path: p}, true
}

func parseID(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// SessionPrefix возвращает префикс всех объектов сессии
func SessionPrefix(sessionID int64) string {
	return SessionsPrefix + strconv.FormatInt(sessionID, 10) + "/"
}

func SessionSidecarKey(sessionID int64) string {
	return SessionPrefix(sessionID) + sessionSidecarName
}

func VideoKey(sessionID, videoID int64) string {
	return SessionPrefix(sessionID) + videosDir + "/" + strconv.FormatInt(videoID, 10) + ".mp4"
}

func VideoSidecarKey(sessionID, videoID int64) string {
	return SessionPrefix(sessionID) + metadataDir + "/" + strconv.FormatInt(videoID, 10) + ".json"
}

func ThumbnailKey(sessionID, videoID int64) string {
	return SessionPrefix(sessionID) + thumbnailsDir + "/" + strconv.FormatInt(videoID, 10) + ".jpg"
}
