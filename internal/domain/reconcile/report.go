package reconcile

import (
	"time"

	"github.com/google/uuid"
)

// State итоговое состояние прохода
type State string

const (
	StateCompleted        State = "completed"
	StateNotAuthenticated State = "not_authenticated"
	StateCancelled        State = "cancelled"
	StateAborted          State = "aborted"
)

// ItemError нефатальная ошибка обработки одного объекта
type ItemError struct {
	Operation string `json:"operation"`
	Key       string `json:"key,omitempty"`
	Err       string `json:"error"`
}

// Report результат прохода синхронизации
type Report struct {
	RunID           uuid.UUID     `json:"runId"`
	Prefix          string        `json:"prefix"`
	State           State         `json:"state"`
	Listed          int           `json:"listed"`
	Skipped         int           `json:"skipped"`
	Imported        int           `json:"imported"`
	Updated         int           `json:"updated"`
	Orphaned        int           `json:"orphaned"`
	Failed          int           `json:"failed"`
	SessionsCreated int           `json:"sessionsCreated"`
	SessionsUpdated int           `json:"sessionsUpdated"`
	SessionsRemoved int           `json:"sessionsRemoved"`
	Errors          []ItemError   `json:"errors"`
	StartTime       time.Time     `json:"startTime"`
	EndTime         time.Time     `json:"endTime"`
	Duration        time.Duration `json:"duration"`
}

func newReport(prefix string) *Report {
	return &Report{
		RunID:     uuid.New(),
		Prefix:    prefix,
		Errors:    []ItemError{},
		StartTime: time.Now().UTC(),
	}
}

func (r *Report) fail(operation, key string, err error) {
	r.Failed++
	r.Errors = append(r.Errors, ItemError{Operation: operation, Key: key, Err: err.Error()})
}

// warn ошибка, которая не делает объект неуспешным
func (r *Report) warn(operation, key string, err error) {
	r.Errors = append(r.Errors, ItemError{Operation: operation, Key: key, Err: err.Error()})
}

func (r *Report) finish(state State) {
	r.State = state
	r.EndTime = time.Now().UTC()
	r.Duration = r.EndTime.Sub(r.StartTime)
}

// Changed true если проход что-то изменил в локальном каталоге
func (r *Report) Changed() bool {
	return r.Imported+r.Updated+r.Orphaned+r.SessionsCreated+r.SessionsUpdated+r.SessionsRemoved > 0
}

// DeletionReport результат удаления сессии на сервере
type DeletionReport struct {
	SessionID      int64       `json:"sessionId"`
	Attempted      int         `json:"attempted"`
	Deleted        int         `json:"deleted"`
	Failed         int         `json:"failed"`
	ClipsRemoved   int         `json:"clipsRemoved"`
	SessionRemoved bool        `json:"sessionRemoved"`
	Errors         []ItemError `json:"errors"`
}
