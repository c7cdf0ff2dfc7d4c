package auth

import (
	"fmt"

	"github.com/spf13/cobra"

	"crownsync/cmd/client/cmd/types"
)

var LogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Выйти и удалить сохранённый токен",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		if !app.IsAuthenticated() {
			fmt.Fprintln(cmd.OutOrStdout(), "Вход не выполнен.")
			return nil
		}
		if err := app.Logout(); err != nil {
			return fmt.Errorf("ошибка сохранения состояния: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s Выход выполнен\n", types.Success("✓"))
		return nil
	},
}
