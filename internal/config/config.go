// Package config loads the service configuration from defaults, an
// optional YAML file and TREESCOPE_* environment overrides.
package config

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds everything the serve command needs.
type Config struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	LogLevel        string        `koanf:"log_level"`
	StoreBackend    string        `koanf:"store_backend"`
	RedisAddr       string        `koanf:"redis_addr"`
	RedisPassword   string        `koanf:"redis_password"`
	RedisDB         int           `koanf:"redis_db"`
	RedisPrefix     string        `koanf:"redis_prefix"`
	SQLitePath      string        `koanf:"sqlite_path"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// Store backends.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
)

// Default returns the configuration used when no file and no
// environment overrides are present.
func Default() *Config {
	return &Config{
		Host:            "127.0.0.1",
		Port:            5050,
		LogLevel:        "info",
		StoreBackend:    StoreMemory,
		RedisAddr:       "127.0.0.1:6379",
		RedisPrefix:     "treescope:sessions",
		SQLitePath:      "treescope.db",
		ShutdownTimeout: 10 * time.Second,
	}
}

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (TREESCOPE_*). An empty path skips
// the file layer.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	// Overlay environment variables: TREESCOPE_REDIS_ADDR -> redis_addr, etc.
	if err := k.Load(env.Provider("TREESCOPE_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "TREESCOPE_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// validBackends is the set of recognized store backend values.
var validBackends = map[string]bool{
	StoreMemory: true,
	StoreRedis:  true,
	StoreSQLite: true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	if !validBackends[c.StoreBackend] {
		return fmt.Errorf("invalid store_backend %q: must be one of memory, redis, sqlite", c.StoreBackend)
	}
	if c.StoreBackend == StoreRedis && c.RedisAddr == "" {
		return fmt.Errorf("redis_addr is required when store_backend is redis")
	}
	if c.StoreBackend == StoreSQLite && c.SQLitePath == "" {
		return fmt.Errorf("sqlite_path is required when store_backend is sqlite")
	}
	if c.ShutdownTimeout < 0 {
		return fmt.Errorf("shutdown_timeout must be non-negative")
	}
	return nil
}

// Addr returns the host:port the HTTP server listens on.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// SlogLevel maps the configured log level name to a slog.Level.
func (c *Config) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("invalid log_level %q: must be one of debug, info, warn, error", c.LogLevel)
}
