package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "4000", cfg.Server.Port)
	assert.Equal(t, "uploads", cfg.Server.StoragePath)
	assert.Equal(t, "8h", cfg.JWT.AccessTokenExpiration)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
}

func TestLoadConfig_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT secret")
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
server:
  port: "5000"
jwt:
  secret: from-file
database:
  host: db.internal
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	t.Setenv("SERVER_PORT", "9999")
	t.Setenv("JWT_SECRET", "from-env")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "9999", cfg.Server.Port, "environment wins over file")
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, "db.internal", cfg.Database.Host, "file wins over defaults")
}

func TestLoadConfig_InvalidDuration(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("JWT_ACCESS_TOKEN_EXPIRATION", "eight hours")

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestAccessTokenExp(t *testing.T) {
	cfg := &Config{}
	cfg.JWT.AccessTokenExpiration = "30m"
	assert.Equal(t, 30*time.Minute, cfg.AccessTokenExp())

	cfg.JWT.AccessTokenExpiration = ""
	assert.Equal(t, 8*time.Hour, cfg.AccessTokenExp(), "unset expiry falls back to 8h")
}

func TestGetPostgresConnectionString(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)
	cfg.Database.User = "app"
	cfg.Database.Password = "pw"
	cfg.Database.Host = "db"
	cfg.Database.Port = "5433"
	cfg.Database.DBName = "thesisvault"
	cfg.Database.SSLMode = ""

	assert.Equal(t,
		"postgres://app:pw@db:5433/thesisvault?sslmode=disable",
		cfg.GetPostgresConnectionString())
}
