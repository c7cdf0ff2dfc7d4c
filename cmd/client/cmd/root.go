package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/exp/slog"

	"crownsync/cmd/client/cmd/auth"
	"crownsync/cmd/client/cmd/session"
	"crownsync/cmd/client/cmd/sync"
	"crownsync/cmd/client/cmd/types"
	"crownsync/internal/app/client"
	"crownsync/internal/app/client/config"
	"crownsync/internal/utils/logger"
)

var (
	cfgFile   string
	serverURL string
	debug     bool
	cfg       *config.Config
	log       *slog.Logger
	app       *client.App
)

var rootCmd = &cobra.Command{
	Use:   "crownsync",
	Short: "Crownsync - синхронизация видеотеки тренера с сервером",
	Long: `Crownsync поддерживает локальную библиотеку видео тренировок
в соответствии с хранилищем на сервере: импортирует новые видео,
обновляет метаданные и убирает клипы, удалённые на сервере.`,
	PersistentPreRunE: setupApp,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if app != nil {
		if cerr := app.Close(); cerr != nil {
			log.Warn("Ошибка закрытия приложения", logger.Err(cerr))
		}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", types.Failure("Ошибка:"), err)
		stop()
		os.Exit(1)
	}
}

func setupApp(cmd *cobra.Command, _ []string) error {
	var err error
	cfg, err = config.Load(viper.New(), cfgFile)
	if err != nil {
		return fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}

	if serverURL != "" {
		cfg.ServerAddress = serverURL
	}
	env := cfg.Env
	if debug {
		env = logger.EnvDev
	}
	log = logger.NewWithFile(env, cfg.LogFile)

	app, err = client.New(cfg, afero.NewOsFs(), log)
	if err != nil {
		return fmt.Errorf("ошибка инициализации приложения: %w", err)
	}

	cmd.SetContext(context.WithValue(cmd.Context(), types.ClientAppKey, app))
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "конфигурационный файл (YAML)")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "адрес сервера host:port")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "подробный лог")
	rootCmd.PersistentFlags().Bool("json", false, "вывод в формате JSON")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(auth.AuthCmd)
	rootCmd.AddCommand(sync.SyncCmd)
	rootCmd.AddCommand(session.SessionCmd)
}
