package config

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"crownsync/internal/utils/logger"
)

const (
	envPath          = ".env"
	defaultAddress   = ":8080"
	defaultDataDir   = "data/objects"
	defaultTTLHours  = 24
	defaultMaxUpload = 512 // MB
)

type Config struct {
	Env     string
	DB      db
	Server  server
	Storage storage
}

type db struct {
	DatabaseURI string
}

type server struct {
	RunAddress     string
	PublicURL      string
	Secret         string
	SessionTTL     time.Duration
	MaxUploadBytes int64
}

type storage struct {
	DataDir string
}

// MustLoad читает .env и переменные окружения; при ошибке завершает процесс
func MustLoad() *Config {
	cfg, err := Load(viper.New())
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return cfg
}

// Load конфигурация сервера из v
func Load(v *viper.Viper) (*Config, error) {
	if err := godotenv.Load(envPath); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	v.AutomaticEnv()
	v.SetDefault("app_env", logger.EnvProd)
	v.SetDefault("run_address", defaultAddress)
	v.SetDefault("data_dir", defaultDataDir)
	v.SetDefault("session_ttl_hours", defaultTTLHours)
	v.SetDefault("max_upload_mb", defaultMaxUpload)

	cfg := &Config{
		Env: v.GetString("app_env"),
		DB:  db{DatabaseURI: v.GetString("database_uri")},
		Server: server{
			RunAddress:     v.GetString("run_address"),
			PublicURL:      v.GetString("public_url"),
			Secret:         v.GetString("secret"),
			SessionTTL:     time.Duration(v.GetInt("session_ttl_hours")) * time.Hour,
			MaxUploadBytes: v.GetInt64("max_upload_mb") << 20,
		},
		Storage: storage{DataDir: v.GetString("data_dir")},
	}
	if cfg.Server.PublicURL == "" {
		cfg.Server.PublicURL = "http://localhost" + cfg.Server.RunAddress
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.DB.DatabaseURI == "" {
		errs = append(errs, errors.New("DATABASE_URI is required"))
	}
	if len(c.Server.Secret) < 16 {
		errs = append(errs, errors.New("SECRET must be at least 16 characters"))
	}
	if c.Server.SessionTTL <= 0 {
		errs = append(errs, fmt.Errorf("SESSION_TTL_HOURS must be positive, got %s", c.Server.SessionTTL))
	}
	if c.Server.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_MB must be positive"))
	}
	return errors.Join(errs...)
}
