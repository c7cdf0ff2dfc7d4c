package sync

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"crownsync/cmd/client/cmd/types"
	"crownsync/internal/app/client"
	"crownsync/internal/domain/reconcile"
)

var (
	syncPrefix string
	showErrors bool
)

var SyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Синхронизация локальной библиотеки с сервером",
	Long: `Синхронизация приводит локальный каталог в соответствие с хранилищем:
импортирует новые видео, обновляет изменённые метаданные и удаляет клипы,
которых больше нет на сервере. Локальные клипы, не загруженные с сервера,
не затрагиваются.`,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Выполнить проход синхронизации",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		if !app.IsAuthenticated() {
			return errors.New("требуется аутентификация. Выполните: crownsync auth login")
		}

		report, err := app.Sync(cmd.Context(), syncPrefix)
		if report == nil {
			return fmt.Errorf("ошибка синхронизации: %w", err)
		}

		if types.JSONOutput(cmd) {
			if jerr := types.PrintJSON(cmd.OutOrStdout(), report); jerr != nil {
				return jerr
			}
		} else {
			printReport(cmd.OutOrStdout(), report)
		}
		if err != nil {
			return fmt.Errorf("ошибка синхронизации: %w", err)
		}
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Показать статистику синхронизаций",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		stats, last := app.Stats()
		if types.JSONOutput(cmd) {
			return types.PrintJSON(cmd.OutOrStdout(), struct {
				Stats client.SyncStats   `json:"stats"`
				Last  *client.RunSummary `json:"last,omitempty"`
			}{stats, last})
		}

		printStatus(cmd.OutOrStdout(), app, stats, last)
		return nil
	},
}

func printReport(w io.Writer, r *reconcile.Report) {
	switch r.State {
	case reconcile.StateCompleted:
		fmt.Fprintf(w, "%s Синхронизация завершена за %v\n", types.Success("✓"), r.Duration.Round(time.Millisecond))
	case reconcile.StateNotAuthenticated:
		fmt.Fprintf(w, "%s Сессия истекла, выполните вход повторно\n", types.Failure("✗"))
		return
	default:
		fmt.Fprintf(w, "%s Синхронизация прервана (%s)\n", types.Warning("!"), r.State)
	}

	fmt.Fprintf(w, "Объектов на сервере:  %d\n", r.Listed)
	fmt.Fprintf(w, "Импортировано видео:  %d\n", r.Imported)
	fmt.Fprintf(w, "Обновлено видео:      %d\n", r.Updated)
	fmt.Fprintf(w, "Удалено клипов:       %d\n", r.Orphaned)
	fmt.Fprintf(w, "Сессий создано/обновлено/удалено: %d/%d/%d\n", r.SessionsCreated, r.SessionsUpdated, r.SessionsRemoved)

	if r.Failed > 0 {
		fmt.Fprintf(w, "%s Ошибок: %d\n", types.Failure("✗"), r.Failed)
	}
	if showErrors {
		for _, e := range r.Errors {
			fmt.Fprintf(w, "  - %s %s: %s\n", e.Operation, e.Key, e.Err)
		}
	}
}

func printStatus(w io.Writer, app *client.App, stats client.SyncStats, last *client.RunSummary) {
	fmt.Fprintln(w, types.Bold("=== Статус синхронизации ==="))
	if app.IsAuthenticated() {
		fmt.Fprintf(w, "Пользователь: %s (%s)\n", app.UserLogin(), app.Role())
	} else {
		fmt.Fprintf(w, "Пользователь: %s\n", types.Warning("вход не выполнен"))
	}

	fmt.Fprintf(w, "Всего проходов:       %d\n", stats.TotalRuns)
	fmt.Fprintf(w, "Импортировано всего:  %d\n", stats.TotalImported)
	fmt.Fprintf(w, "Обновлено всего:      %d\n", stats.TotalUpdated)
	fmt.Fprintf(w, "Удалено всего:        %d\n", stats.TotalOrphaned)
	fmt.Fprintf(w, "Ошибок всего:         %d\n", stats.TotalErrors)
	if stats.TotalRuns > 0 {
		fmt.Fprintf(w, "Средняя длительность: %.2fs\n", stats.AvgSyncDuration)
	}
	if !stats.LastSuccessful.IsZero() {
		fmt.Fprintf(w, "Последний успешный:   %s\n", stats.LastSuccessful.Local().Format(time.DateTime))
	}
	if !stats.LastFailed.IsZero() {
		fmt.Fprintf(w, "Последний неудачный:  %s\n", types.Failure(stats.LastFailed.Local().Format(time.DateTime)))
	}

	if last == nil {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Последний проход %s (%s): %s\n", last.RunID, last.Prefix, last.State)
	fmt.Fprintf(w, "  импорт %d, обновление %d, удаление %d, ошибок %d\n", last.Imported, last.Updated, last.Orphaned, last.Failed)
	if last.Error != "" {
		fmt.Fprintf(w, "  %s %s\n", types.Failure("ошибка:"), last.Error)
	}
}

func init() {
	runCmd.Flags().StringVarP(&syncPrefix, "prefix", "p", "", "префикс ключей на сервере (по умолчанию REMOTE_PREFIX)")
	runCmd.Flags().BoolVarP(&showErrors, "errors", "e", false, "показать ошибки по объектам")

	SyncCmd.AddCommand(runCmd)
	SyncCmd.AddCommand(statusCmd)
}
