package reconcile

import (
	"crownsync/internal/domain/catalog"
	"crownsync/internal/domain/metadata"
	"crownsync/internal/domain/remote"
)

// PassContext состояние одного прохода. Создается заново на каждый Run
// и передается через все шаги.
type PassContext struct {
	Prefix   string
	Catalog  *remote.Catalog
	Sessions *metadata.SessionCache
	// VideoSidecars загруженные метаданные видео, отсутствуют для битых и недоступных файлов
	VideoSidecars map[remote.VideoRef]*metadata.VideoSidecar

	Videos       []VideoView
	SessionViews []SessionView

	localSessions []catalog.Session
	sessionsRead  bool
	// resolved remote sessionId -> локальная сессия
	resolved map[int64]catalog.Session
}

func NewPassContext(prefix string) *PassContext {
	return &PassContext{
		Prefix:        prefix,
		Catalog:       &remote.Catalog{},
		Sessions:      metadata.NewSessionCache(),
		VideoSidecars: make(map[remote.VideoRef]*metadata.VideoSidecar),
		resolved:      make(map[int64]catalog.Session),
	}
}

// SessionSidecar метаданные сессии или nil
func (pc *PassContext) SessionSidecar(sessionID int64) *metadata.SessionSidecar {
	return pc.Sessions.Get(sessionID)
}
