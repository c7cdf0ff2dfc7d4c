package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"crownsync/cmd/client/cmd/types"
	"crownsync/internal/domain/user"
)

var registerRole string

var RegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Зарегистрировать нового пользователя",
	Long: `Регистрация нового пользователя на сервере.

Роль viewer даёт доступ только на чтение, editor может удалять сессии на сервере.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		role, err := user.ParseRole(registerRole)
		if err != nil {
			return err
		}

		login := types.Prompt("Логин: ")
		password, err := types.ReadPassword("Пароль: ")
		if err != nil {
			return err
		}
		confirm, err := types.ReadPassword("Повторите пароль: ")
		if err != nil {
			return err
		}
		if password != confirm {
			return errors.New("пароли не совпадают")
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		if err := app.Register(ctx, login, password, role); err != nil {
			return fmt.Errorf("ошибка регистрации: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s Пользователь %s зарегистрирован (%s)\n", types.Success("✓"), types.Bold(login), role)
		fmt.Fprintln(cmd.OutOrStdout(), "Теперь можно войти: crownsync auth login")
		return nil
	},
}

func init() {
	RegisterCmd.Flags().StringVar(&registerRole, "role", string(user.RoleViewer), "роль пользователя (viewer|editor)")
}
