package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlessandroCarella/treescope/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:5050", cfg.Addr())
	assert.Equal(t, config.StoreMemory, cfg.StoreBackend)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	require.NoError(t, cfg.Validate())
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "treescope.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"port: 8080\nstore_backend: sqlite\nsqlite_path: /tmp/sessions.db\nlog_level: debug\n"), 0644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, config.StoreSQLite, cfg.StoreBackend)
	assert.Equal(t, "/tmp/sessions.db", cfg.SQLitePath)
	// Unset fields keep their defaults.
	assert.Equal(t, "127.0.0.1", cfg.Host)
	require.NoError(t, cfg.Validate())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 5050, cfg.Port)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TREESCOPE_PORT", "9999")
	t.Setenv("TREESCOPE_STORE_BACKEND", "redis")
	t.Setenv("TREESCOPE_REDIS_ADDR", "redis.internal:6379")
	t.Setenv("TREESCOPE_SHUTDOWN_TIMEOUT", "30s")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.Port)
	assert.Equal(t, config.StoreRedis, cfg.StoreBackend)
	assert.Equal(t, "redis.internal:6379", cfg.RedisAddr)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	cfg := config.Default()
	cfg.Port = 0
	assert.ErrorContains(t, cfg.Validate(), "port")

	cfg = config.Default()
	cfg.StoreBackend = "postgres"
	assert.ErrorContains(t, cfg.Validate(), "store_backend")

	cfg = config.Default()
	cfg.StoreBackend = config.StoreRedis
	cfg.RedisAddr = ""
	assert.ErrorContains(t, cfg.Validate(), "redis_addr")

	cfg = config.Default()
	cfg.LogLevel = "loud"
	assert.ErrorContains(t, cfg.Validate(), "log_level")
}
