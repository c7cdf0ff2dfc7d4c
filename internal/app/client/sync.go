package client

import (
	"context"
	"errors"
	"fmt"

	"crownsync/internal/domain/reconcile"
)

// Sync выполняет проход синхронизации и сохраняет статистику.
// Пустой prefix означает префикс из конфигурации.
func (a *App) Sync(ctx context.Context, prefix string) (*reconcile.Report, error) {
	if prefix == "" {
		prefix = a.config.RemotePrefix
	}

	report, runErr := a.engine.Run(ctx, prefix)
	if errors.Is(runErr, reconcile.ErrPassInProgress) {
		return nil, runErr
	}
	if errors.Is(runErr, ErrUnauthorized) {
		a.log.Warn("Токен отклонён сервером, требуется повторный вход")
	}

	a.mu.Lock()
	a.state.Stats.record(report, runErr)
	a.state.LastReport = summarize(report, runErr)
	err := saveAppState(a.fs, a.config.StatePath, a.state)
	a.mu.Unlock()
	if err != nil {
		a.log.Warn("Не удалось сохранить статистику", "error", err)
	}

	return report, runErr
}

// DeleteRemoteSession удаляет сессию из хранилища и соответствующие локальные клипы
func (a *App) DeleteRemoteSession(ctx context.Context, sessionID int64) (*reconcile.DeletionReport, error) {
	report, err := a.engine.DeleteRemoteSession(ctx, sessionID, a.CanWrite())
	if err != nil && report == nil {
		return nil, err
	}
	if err != nil {
		return report, fmt.Errorf("удаление сессии %d: %w", sessionID, err)
	}
	return report, nil
}

// Stats копия накопленной статистики и итога последнего прохода
func (a *App) Stats() (SyncStats, *RunSummary) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var last *RunSummary
	if a.state.LastReport != nil {
		cp := *a.state.LastReport
		last = &cp
	}
	return a.state.Stats, last
}
