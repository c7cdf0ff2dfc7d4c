package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"crownsync/cmd/client/cmd/types"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Инициализировать клиент",
	Long: `Команда init выполняет первоначальную настройку клиента:
	1. Создаёт каталог настроек и локальную библиотеку
	2. Проверяет соединение с сервером`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		fmt.Fprintln(out, types.Bold("=== Инициализация crownsync ==="))
		fmt.Fprintf(out, "Каталог настроек: %s\n", cfg.ConfigDir)
		fmt.Fprintf(out, "Библиотека:       %s\n", cfg.DataPath)
		fmt.Fprintf(out, "Миниатюры:        %s\n", cfg.ThumbnailsDir)

		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()

		if err := app.CheckConnection(ctx); err != nil {
			fmt.Fprintf(out, "%s Сервер %s недоступен: %v\n", types.Warning("!"), cfg.ServerAddress, err)
			fmt.Fprintln(out, "Синхронизация будет недоступна до восстановления соединения.")
		} else {
			fmt.Fprintf(out, "%s Соединение с сервером %s установлено\n", types.Success("✓"), cfg.ServerAddress)
		}

		fmt.Fprintln(out)
		fmt.Fprintln(out, "Что дальше:")
		fmt.Fprintln(out, "1. Войдите в систему: crownsync auth login")
		fmt.Fprintln(out, "2. Синхронизируйте библиотеку: crownsync sync run")
		return nil
	},
}
