package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"crownsync/internal/utils/logger"
)

const (
	defaultServerAddress = "localhost:8080"
	defaultConfigDir     = ".crownsync"
	defaultPrefix        = "sessions/"
	defaultPageSize      = 1000
	defaultConcurrency   = 4
	defaultURLTTL        = 5
)

type Config struct {
	Env                 string `mapstructure:"app_env"`
	ServerAddress       string `mapstructure:"server_address"`
	EnableTLS           bool   `mapstructure:"enable_tls"`
	ConfigDir           string `mapstructure:"config_dir"`
	DataPath            string `mapstructure:"data_path"`
	ThumbnailsDir       string `mapstructure:"thumbnails_dir"`
	LogFile             string `mapstructure:"log_file"`
	MetricsFile         string `mapstructure:"metrics_file"`
	StatePath           string `mapstructure:"-"`
	RemotePrefix        string `mapstructure:"remote_prefix"`
	RemoteRoot          string `mapstructure:"remote_root"`
	ListPageSize        int    `mapstructure:"list_page_size"`
	SyncConcurrency     int    `mapstructure:"sync_concurrency"`
	SignedURLTTLMinutes int    `mapstructure:"signed_url_ttl_minutes"`
}

// MustLoad загружает конфигурацию клиента, configFile необязателен
func MustLoad(configFile string) *Config {
	cfg, err := Load(viper.New(), configFile)
	if err != nil {
		panic(fmt.Sprintf("Ошибка конфигурации: %v", err))
	}
	return cfg
}

// Load читает .env, переменные окружения и YAML файл configFile
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Printf("Ошибка загрузки .env файла: %v\n", err)
		}
	}

	v.AutomaticEnv()
	v.SetDefault("app_env", logger.EnvLocal)
	v.SetDefault("server_address", defaultServerAddress)
	v.SetDefault("enable_tls", false)
	v.SetDefault("config_dir", defaultConfigDir)
	v.SetDefault("remote_prefix", defaultPrefix)
	v.SetDefault("remote_root", "")
	v.SetDefault("list_page_size", defaultPageSize)
	v.SetDefault("sync_concurrency", defaultConcurrency)
	v.SetDefault("signed_url_ttl_minutes", defaultURLTTL)
	for _, key := range []string{"data_path", "thumbnails_dir", "log_file", "metrics_file"} {
		v.SetDefault(key, "")
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("чтение %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("разбор конфигурации: %w", err)
	}

	// Относительный каталог конфигурации живёт в домашней директории
	if cfg.ConfigDir == defaultConfigDir {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			homeDir = "."
		}
		cfg.ConfigDir = filepath.Join(homeDir, defaultConfigDir)
	}
	if cfg.DataPath == "" {
		cfg.DataPath = filepath.Join(cfg.ConfigDir, "library.db")
	}
	if cfg.ThumbnailsDir == "" {
		cfg.ThumbnailsDir = filepath.Join(cfg.ConfigDir, "thumbnails")
	}
	if cfg.LogFile == "" {
		cfg.LogFile = filepath.Join(cfg.ConfigDir, "crownsync.log")
	}
	cfg.StatePath = filepath.Join(cfg.ConfigDir, "state.json")

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.ServerAddress == "" {
		errs = append(errs, errors.New("server_address не может быть пустым"))
	}
	if c.ListPageSize <= 0 || c.ListPageSize > 1000 {
		errs = append(errs, fmt.Errorf("list_page_size должен быть в диапазоне 1..1000, получено %d", c.ListPageSize))
	}
	if c.SyncConcurrency <= 0 {
		errs = append(errs, errors.New("sync_concurrency должен быть положительным"))
	}
	if c.SignedURLTTLMinutes <= 0 {
		errs = append(errs, errors.New("signed_url_ttl_minutes должен быть положительным"))
	}
	return errors.Join(errs...)
}

// BaseURL адрес сервера со схемой
func (c *Config) BaseURL() string {
	if c.EnableTLS {
		return "https://" + c.ServerAddress
	}
	return "http://" + c.ServerAddress
}

func (c *Config) IsProd() bool {
	return c.Env == logger.EnvProd
}
