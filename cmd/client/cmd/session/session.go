package session

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"crownsync/cmd/client/cmd/types"
)

var assumeYes bool

// SessionCmd - родительская команда для работы с сессиями тренировок
var SessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Сессии тренировок",
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Список локальных сессий",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		sessions, err := app.Sessions(cmd.Context())
		if err != nil {
			return fmt.Errorf("ошибка чтения каталога: %w", err)
		}
		if types.JSONOutput(cmd) {
			return types.PrintJSON(cmd.OutOrStdout(), sessions)
		}
		if len(sessions) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Сессий нет. Выполните: crownsync sync run")
			return nil
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tДАТА\tНАЗВАНИЕ\tМЕСТО\tКЛИПЫ\tС СЕРВЕРА")
		for _, s := range sessions {
			date := "-"
			if !s.Date.IsZero() {
				date = s.Date.UTC().Format(time.DateOnly)
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%d\n", s.ID, date, s.Name, s.Place, s.Clips, s.RemoteClips)
		}
		return tw.Flush()
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Удалить сессию на сервере и локально",
	Long: `Удаляет все объекты сессии на сервере, затем локальные клипы,
удалённые на сервере, и саму сессию, если в ней не осталось клипов.
Требуется роль editor.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || id <= 0 {
			return fmt.Errorf("некорректный ID сессии: %s", args[0])
		}
		if !app.CanWrite() {
			return errors.New("недостаточно прав: требуется роль editor")
		}

		if !assumeYes {
			answer := types.Prompt(fmt.Sprintf("Удалить сессию %d на сервере? [y/N]: ", id))
			if a := strings.ToLower(answer); a != "y" && a != "yes" {
				fmt.Fprintln(cmd.OutOrStdout(), "Отменено.")
				return nil
			}
		}

		report, err := app.DeleteRemoteSession(cmd.Context(), id)
		if report != nil {
			if types.JSONOutput(cmd) {
				if jerr := types.PrintJSON(cmd.OutOrStdout(), report); jerr != nil {
					return jerr
				}
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Объектов на сервере: %d, удалено: %d, ошибок: %d\n", report.Attempted, report.Deleted, report.Failed)
				fmt.Fprintf(cmd.OutOrStdout(), "Локальных клипов удалено: %d\n", report.ClipsRemoved)
				if report.SessionRemoved {
					fmt.Fprintf(cmd.OutOrStdout(), "%s Сессия %d удалена\n", types.Success("✓"), id)
				}
			}
		}
		if err != nil {
			return fmt.Errorf("ошибка удаления сессии: %w", err)
		}
		return nil
	},
}

func init() {
	deleteCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "не спрашивать подтверждение")

	SessionCmd.AddCommand(listCmd)
	SessionCmd.AddCommand(deleteCmd)
}
