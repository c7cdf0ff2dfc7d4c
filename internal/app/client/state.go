package client

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"crownsync/internal/domain/reconcile"
	"crownsync/internal/domain/user"
)

// AppState состояние клиента между запусками
type AppState struct {
	UserLogin  string      `json:"user_login"`
	Role       user.Role   `json:"role"`
	Token      string      `json:"token,omitempty"`
	Stats      SyncStats   `json:"stats"`
	LastReport *RunSummary `json:"last_report,omitempty"`
}

// SyncStats накопленная статистика синхронизаций
type SyncStats struct {
	TotalRuns       int       `json:"total_runs"`
	LastSuccessful  time.Time `json:"last_successful"`
	LastFailed      time.Time `json:"last_failed"`
	TotalImported   int       `json:"total_imported"`
	TotalUpdated    int       `json:"total_updated"`
	TotalOrphaned   int       `json:"total_orphaned"`
	TotalErrors     int       `json:"total_errors"`
	AvgSyncDuration float64   `json:"avg_sync_duration"`
}

// RunSummary краткий итог последнего прохода
type RunSummary struct {
	RunID     string          `json:"run_id"`
	Prefix    string          `json:"prefix"`
	State     reconcile.State `json:"state"`
	Listed    int             `json:"listed"`
	Imported  int             `json:"imported"`
	Updated   int             `json:"updated"`
	Orphaned  int             `json:"orphaned"`
	Failed    int             `json:"failed"`
	StartTime time.Time       `json:"start_time"`
	Duration  time.Duration   `json:"duration"`
	Error     string          `json:"error,omitempty"`
}

func summarize(r *reconcile.Report, runErr error) *RunSummary {
	s := &RunSummary{
		RunID:     r.RunID.String(),
		Prefix:    r.Prefix,
		State:     r.State,
		Listed:    r.Listed,
		Imported:  r.Imported,
		Updated:   r.Updated,
		Orphaned:  r.Orphaned,
		Failed:    r.Failed,
		StartTime: r.StartTime,
		Duration:  r.Duration,
	}
	if runErr != nil {
		s.Error = runErr.Error()
	}
	return s
}

// record учитывает проход в статистике
func (s *SyncStats) record(r *reconcile.Report, runErr error) {
	s.TotalRuns++
	if runErr == nil && r.State == reconcile.StateCompleted {
		s.LastSuccessful = r.EndTime
	} else {
		s.LastFailed = r.EndTime
	}

	s.TotalImported += r.Imported
	s.TotalUpdated += r.Updated
	s.TotalOrphaned += r.Orphaned
	s.TotalErrors += len(r.Errors)

	if s.AvgSyncDuration == 0 {
		s.AvgSyncDuration = r.Duration.Seconds()
	} else {
		s.AvgSyncDuration = (s.AvgSyncDuration*float64(s.TotalRuns-1) + r.Duration.Seconds()) / float64(s.TotalRuns)
	}
}

func loadAppState(fs afero.Fs, path string) (*AppState, error) {
	data, err := afero.ReadFile(fs, path)
	if os.IsNotExist(err) {
		return &AppState{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения состояния: %w", err)
	}

	var state AppState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("ошибка разбора состояния: %w", err)
	}
	return &state, nil
}

func saveAppState(fs afero.Fs, path string, state *AppState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("ошибка сериализации состояния: %w", err)
	}
	if err := fs.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("ошибка создания каталога: %w", err)
	}

	tmp := path + ".tmp"
	if err := afero.WriteFile(fs, tmp, data, 0o600); err != nil {
		return fmt.Errorf("ошибка записи состояния: %w", err)
	}
	if err := fs.Rename(tmp, path); err != nil {
		return fmt.Errorf("ошибка записи состояния: %w", err)
	}
	return nil
}
