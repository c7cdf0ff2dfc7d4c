package catalog

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryStorage in-memory каталог, используется когда SQLite недоступен и в тестах
type MemoryStorage struct {
	mu           sync.RWMutex
	clips        map[int64]VideoClip
	sessions     map[int64]Session
	athletes     map[int64]Athlete
	tags         map[int64]Tag
	eventTags    map[int64]EventTag
	inputs       map[int64][]EventInput
	timingEvents map[int64][]TimingEvent
	nextClipID   int64
	nextRowID    int64
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		clips:        make(map[int64]VideoClip),
		sessions:     make(map[int64]Session),
		athletes:     make(map[int64]Athlete),
		tags:         make(map[int64]Tag),
		eventTags:    make(map[int64]EventTag),
		inputs:       make(map[int64][]EventInput),
		timingEvents: make(map[int64][]TimingEvent),
	}
}

func (m *MemoryStorage) GetAllVideoClips(_ context.Context) ([]VideoClip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	clips := make([]VideoClip, 0, len(m.clips))
	for _, c := range m.clips {
		clips = append(clips, c)
	}
	sort.Slice(clips, func(i, j int) bool { return clips[i].ID < clips[j].ID })
	return clips, nil
}

func (m *MemoryStorage) InsertVideoClip(_ context.Context, clip VideoClip) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextClipID++
	clip.ID = m.nextClipID
	m.clips[clip.ID] = clip
	return clip.ID, nil
}

func (m *MemoryStorage) UpdateVideoClip(_ context.Context, clip VideoClip) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.clips[clip.ID]; !ok {
		return fmt.Errorf("video clip %d: %w", clip.ID, ErrNotFound)
	}
	m.clips[clip.ID] = clip
	return nil
}

func (m *MemoryStorage) DeleteVideoClip(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.clips, id)
	delete(m.inputs, id)
	delete(m.timingEvents, id)
	return nil
}

func (m *MemoryStorage) CountVideoClipsBySession(_ context.Context, sessionID int64) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, c := range m.clips {
		if c.SessionID == sessionID {
			n++
		}
	}
	return n, nil
}

func (m *MemoryStorage) GetSessionByID(_ context.Context, id int64) (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return Session{}, fmt.Errorf("session %d: %w", id, ErrNotFound)
	}
	return s, nil
}

func (m *MemoryStorage) GetAllSessions(_ context.Context) ([]Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sessions := make([]Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].ID < sessions[j].ID })
	return sessions, nil
}

func (m *MemoryStorage) InsertSessionWithID(_ context.Context, session Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[session.ID]; ok {
		return fmt.Errorf("session %d: %w", session.ID, ErrAlreadyExists)
	}
	m.sessions[session.ID] = session
	return nil
}

func (m *MemoryStorage) SaveSession(_ context.Context, session Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[session.ID] = session
	return nil
}

func (m *MemoryStorage) DeleteSession(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, id)
	return nil
}

func (m *MemoryStorage) SaveAthlete(_ context.Context, athlete Athlete) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.athletes[athlete.ID] = athlete
	return nil
}

// Athlete возвращает сохраненного спортсмена
func (m *MemoryStorage) Athlete(id int64) (Athlete, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.athletes[id]
	return a, ok
}

func (m *MemoryStorage) SaveTag(_ context.Context, tag Tag) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tags[tag.ID] = tag
	return nil
}

func (m *MemoryStorage) InsertEventTag(_ context.Context, tag EventTag) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.eventTags[tag.ID]; ok {
		return fmt.Errorf("event tag %d: %w", tag.ID, ErrAlreadyExists)
	}
	m.eventTags[tag.ID] = tag
	return nil
}

func (m *MemoryStorage) GetEventTagByID(_ context.Context, id int64) (EventTag, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.eventTags[id]
	if !ok {
		return EventTag{}, fmt.Errorf("event tag %d: %w", id, ErrNotFound)
	}
	return t, nil
}

func (m *MemoryStorage) SaveEventInput(_ context.Context, input EventInput) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextRowID++
	input.ID = m.nextRowID
	m.inputs[input.VideoID] = append(m.inputs[input.VideoID], input)
	return nil
}

func (m *MemoryStorage) ListEventInputs(_ context.Context, videoID int64) ([]EventInput, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]EventInput(nil), m.inputs[videoID]...), nil
}

func (m *MemoryStorage) DeleteEventInputsByVideo(_ context.Context, videoID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.inputs, videoID)
	return nil
}

func (m *MemoryStorage) InsertTimingEvents(_ context.Context, events []TimingEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range events {
		m.nextRowID++
		e.ID = m.nextRowID
		m.timingEvents[e.VideoID] = append(m.timingEvents[e.VideoID], e)
	}
	return nil
}

func (m *MemoryStorage) ListTimingEvents(_ context.Context, videoID int64) ([]TimingEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]TimingEvent(nil), m.timingEvents[videoID]...), nil
}

func (m *MemoryStorage) DeleteTimingEventsByVideo(_ context.Context, videoID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.timingEvents, videoID)
	return nil
}
