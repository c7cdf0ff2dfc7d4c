package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("DATABASE_URI", "postgres://localhost/crownsync")
	t.Setenv("SECRET", "0123456789abcdef")
	t.Setenv("RUN_ADDRESS", ":9090")
	t.Setenv("SESSION_TTL_HOURS", "2")

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, ":9090", cfg.Server.RunAddress)
	assert.Equal(t, "http://localhost:9090", cfg.Server.PublicURL)
	assert.Equal(t, 2*time.Hour, cfg.Server.SessionTTL)
	assert.Equal(t, int64(512<<20), cfg.Server.MaxUploadBytes)
	assert.Equal(t, "data/objects", cfg.Storage.DataDir)
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "missing database",
			env:     map[string]string{"SECRET": "0123456789abcdef"},
			wantErr: "DATABASE_URI is required",
		},
		{
			name:    "short secret",
			env:     map[string]string{"DATABASE_URI": "postgres://x", "SECRET": "short"},
			wantErr: "SECRET must be at least 16 characters",
		},
		{
			name:    "bad ttl",
			env:     map[string]string{"DATABASE_URI": "postgres://x", "SECRET": "0123456789abcdef", "SESSION_TTL_HOURS": "0"},
			wantErr: "SESSION_TTL_HOURS must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range []string{"DATABASE_URI", "SECRET", "SESSION_TTL_HOURS"} {
				t.Setenv(k, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load(viper.New())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
