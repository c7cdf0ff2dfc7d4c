package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"crownsync/internal/domain/catalog"
)

// SessionRequest данные сессии с сервера для поиска или создания локальной
type SessionRequest struct {
	RemoteID int64
	Name     string
	Place    string
	Coach    string
	Type     string
	Date     time.Time
}

// ResolveOrCreateSession находит локальную сессию для сессии на сервере:
// по id, затем по имени, дню и месту, иначе создает новую с id сервера.
func (e *Engine) ResolveOrCreateSession(ctx context.Context, pc *PassContext, req SessionRequest) (catalog.Session, bool, error) {
	if s, ok := pc.resolved[req.RemoteID]; ok {
		return s, false, nil
	}

	s, err := e.repo.GetSessionByID(ctx, req.RemoteID)
	switch {
	case err == nil:
		pc.resolved[req.RemoteID] = s
		return s, false, nil
	case !errors.Is(err, catalog.ErrNotFound):
		return catalog.Session{}, false, fmt.Errorf("get session %d: %w", req.RemoteID, err)
	}

	sessions, err := e.localSessions(ctx, pc)
	if err != nil {
		return catalog.Session{}, false, err
	}
	if match, ok := FindMatchingSession(sessions, req); ok {
		e.log.Debug("remote session matched to local session",
			"remote_id", req.RemoteID, "local_id", match.ID, "name", match.Name)
		pc.resolved[req.RemoteID] = match
		return match, false, nil
	}

	created := catalog.Session{
		ID:    req.RemoteID,
		Name:  firstNonEmpty(req.Name, FallbackSessionName(req.RemoteID)),
		Place: strings.TrimSpace(req.Place),
		Coach: strings.TrimSpace(req.Coach),
		Type:  strings.TrimSpace(req.Type),
		Date:  req.Date.UTC(),
	}
	if err := e.repo.InsertSessionWithID(ctx, created); err != nil {
		return catalog.Session{}, false, fmt.Errorf("insert session %d: %w", req.RemoteID, err)
	}

	pc.localSessions = append(pc.localSessions, created)
	pc.resolved[req.RemoteID] = created
	return created, true, nil
}

func (e *Engine) localSessions(ctx context.Context, pc *PassContext) ([]catalog.Session, error) {
	if pc.sessionsRead {
		return pc.localSessions, nil
	}
	sessions, err := e.repo.GetAllSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list local sessions: %w", err)
	}
	pc.localSessions = sessions
	pc.sessionsRead = true
	return sessions, nil
}

// FindMatchingSession ищет сессию с тем же именем и днем. Если в запросе
// задано место, оно должно совпасть с местом локальной сессии.
func FindMatchingSession(sessions []catalog.Session, req SessionRequest) (catalog.Session, bool) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return catalog.Session{}, false
	}
	place := strings.TrimSpace(req.Place)

	for _, s := range sessions {
		if !strings.EqualFold(strings.TrimSpace(s.Name), name) {
			continue
		}
		if !sameDay(s.Date, req.Date) {
			continue
		}
		if place != "" && !strings.EqualFold(strings.TrimSpace(s.Place), place) {
			continue
		}
		return s, true
	}
	return catalog.Session{}, false
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
