package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setEnv(t *testing.T, env map[string]string) {
	t.Helper()
	for _, key := range []string{
		"STORE_DRIVER", "DATABASE_URL", "JWT_SECRET_KEY", "SERVER_PORT", "CORS_ALLOWED_ORIGINS", "LOCK_SWEEP_INTERVAL",
		"R2_ACCOUNT_ID", "R2_ACCESS_KEY_ID", "R2_SECRET_ACCESS_KEY", "R2_BUCKET_NAME", "R2_PUBLIC_BASE_URL",
	} {
		t.Setenv(key, env[key])
	}
}

func TestLoadDefaults(t *testing.T) {
	setEnv(t, map[string]string{
		"DATABASE_URL":   "postgres://localhost/tournaments",
		"JWT_SECRET_KEY": "secret",
	})

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoreDriverPostgres, cfg.StoreDriver)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 5*time.Minute, cfg.LockSweepInterval)
	assert.False(t, cfg.R2().Enabled())
}

func TestLoadMemoryStoreNeedsNoDatabase(t *testing.T) {
	setEnv(t, map[string]string{
		"STORE_DRIVER":         "Memory",
		"JWT_SECRET_KEY":       "secret",
		"SERVER_PORT":          "9000",
		"CORS_ALLOWED_ORIGINS": "https://a.example, https://b.example,",
		"LOCK_SWEEP_INTERVAL":  "30s",
		"R2_BUCKET_NAME":       "archives",
	})

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoreDriverMemory, cfg.StoreDriver)
	assert.Equal(t, 9000, cfg.ServerPort)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 30*time.Second, cfg.LockSweepInterval)
	assert.True(t, cfg.R2().Enabled())
	assert.Error(t, cfg.R2().Validate(), "partial R2 settings are rejected")
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{name: "missing database", env: map[string]string{"JWT_SECRET_KEY": "s"}, want: "DATABASE_URL"},
		{name: "missing secret", env: map[string]string{"STORE_DRIVER": "memory"}, want: "JWT_SECRET_KEY"},
		{name: "unknown driver", env: map[string]string{"STORE_DRIVER": "mongo", "JWT_SECRET_KEY": "s"}, want: "STORE_DRIVER"},
		{name: "port not a number", env: map[string]string{"STORE_DRIVER": "memory", "JWT_SECRET_KEY": "s", "SERVER_PORT": "http"}, want: "SERVER_PORT"},
		{name: "port out of range", env: map[string]string{"STORE_DRIVER": "memory", "JWT_SECRET_KEY": "s", "SERVER_PORT": "70000"}, want: "SERVER_PORT"},
		{name: "bad sweep interval", env: map[string]string{"STORE_DRIVER": "memory", "JWT_SECRET_KEY": "s", "LOCK_SWEEP_INTERVAL": "often"}, want: "LOCK_SWEEP_INTERVAL"},
		{name: "negative sweep interval", env: map[string]string{"STORE_DRIVER": "memory", "JWT_SECRET_KEY": "s", "LOCK_SWEEP_INTERVAL": "-1m"}, want: "LOCK_SWEEP_INTERVAL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setEnv(t, tt.env)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
