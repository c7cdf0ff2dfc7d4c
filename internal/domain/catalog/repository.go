package catalog

import "context"

// Repository локальный каталог сессий и видео.
// Реализация должна быть безопасна для последовательного использования одним вызывающим.
type Repository interface {
	GetAllVideoClips(ctx context.Context) ([]VideoClip, error)
	InsertVideoClip(ctx context.Context, clip VideoClip) (int64, error)
	UpdateVideoClip(ctx context.Context, clip VideoClip) error
	DeleteVideoClip(ctx context.Context, id int64) error
	CountVideoClipsBySession(ctx context.Context, sessionID int64) (int, error)

	GetSessionByID(ctx context.Context, id int64) (Session, error)
	GetAllSessions(ctx context.Context) ([]Session, error)
	InsertSessionWithID(ctx context.Context, session Session) error
	SaveSession(ctx context.Context, session Session) error
	DeleteSession(ctx context.Context, id int64) error

	SaveAthlete(ctx context.Context, athlete Athlete) error
	SaveTag(ctx context.Context, tag Tag) error
	InsertEventTag(ctx context.Context, tag EventTag) error
	GetEventTagByID(ctx context.Context, id int64) (EventTag, error)

	SaveEventInput(ctx context.Context, input EventInput) error
	ListEventInputs(ctx context.Context, videoID int64) ([]EventInput, error)
	DeleteEventInputsByVideo(ctx context.Context, videoID int64) error

	InsertTimingEvents(ctx context.Context, events []TimingEvent) error
	ListTimingEvents(ctx context.Context, videoID int64) ([]TimingEvent, error)
	DeleteTimingEventsByVideo(ctx context.Context, videoID int64) error
}
