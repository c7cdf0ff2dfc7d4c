package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"crownsync/cmd/client/cmd/types"
)

var loginName string

var LoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Войти на сервер видеотеки",
	Long: `Аутентификация на сервере.

После входа токен и роль сохраняются локально в state.json и используются
командами sync и session.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		login := loginName
		if login == "" {
			login = types.Prompt("Логин: ")
		}
		password, err := types.ReadPassword("Пароль: ")
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		role, err := app.Login(ctx, login, password)
		if err != nil {
			return fmt.Errorf("ошибка аутентификации: %w", err)
		}

		if types.JSONOutput(cmd) {
			return types.PrintJSON(cmd.OutOrStdout(), map[string]string{"login": login, "role": string(role)})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s Вход выполнен: %s (%s)\n", types.Success("✓"), types.Bold(login), role)
		if !role.CanWrite() {
			fmt.Fprintln(cmd.OutOrStdout(), types.Warning("Роль только для чтения: удаление сессий на сервере недоступно"))
		}
		return nil
	},
}

func init() {
	LoginCmd.Flags().StringVarP(&loginName, "login", "l", "", "логин пользователя")
}
