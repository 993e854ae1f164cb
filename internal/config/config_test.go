package config_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bizdesk/bizdesk/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "dev", cfg.Version)
	assert.Equal(t, "memory", cfg.StoreEngine)
	assert.Equal(t, "bizdesk.json", cfg.StoreFile)
	assert.Equal(t, "bizdesk", cfg.KeyPrefix)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, "test-secret", cfg.JWTSecret)
	assert.Equal(t, 60, cfg.SweepInterval)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("PORT", "9090")
	t.Setenv("STORE_ENGINE", "file")
	t.Setenv("STORE_FILE", "/tmp/data.json")
	t.Setenv("BCRYPT_COST", "10")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "file", cfg.StoreEngine)
	assert.Equal(t, "/tmp/data.json", cfg.StoreFile)
	assert.Equal(t, 10, cfg.BcryptCost)
}

func TestLoad_RequiresJWTSecret(t *testing.T) {
	// t.Setenv registers the restore; the value itself must be absent.
	t.Setenv("JWT_SECRET", "placeholder")
	require.NoError(t, os.Unsetenv("JWT_SECRET"))

	_, err := config.Load()
	assert.Error(t, err)
}
