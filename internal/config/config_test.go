package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	content := `
server:
  host: "127.0.0.1"
  port: 8080
  max_connections: 5000
  debug: true

storage:
  driver: sqlite
  redis:
    addr: "redis:6379"
    password: "secret"
    db: 1
  sqlite:
    path: "/var/lib/pnp/games.db"
  key_ttl: 72
  cache:
    enabled: true
    ttl: 30
  persist_queue: 64

game:
  canvas_width: 1024
  canvas_height: 768
  auto_end_delay_ms: 500

security:
  allowed_origins:
    - "http://localhost:3000"
    - "https://example.com"
  rate_limit:
    max_per_second: 20
    max_per_minute: 120
    ban_duration: 120
  message_limit:
    max_per_second: 50
    joins_per_minute: 5

log:
  level: debug
`
	cfg, err := Load(writeConfig(t, content))
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5000, cfg.Server.MaxConnections)
	assert.True(t, cfg.Server.Debug)

	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "redis:6379", cfg.Storage.Redis.Addr)
	assert.Equal(t, "secret", cfg.Storage.Redis.Password)
	assert.Equal(t, 1, cfg.Storage.Redis.DB)
	assert.Equal(t, "/var/lib/pnp/games.db", cfg.Storage.SQLite.Path)
	assert.Equal(t, 72*time.Hour, cfg.Storage.KeyTTLDuration())
	assert.True(t, cfg.Storage.Cache.Enabled)
	assert.Equal(t, 30*time.Second, cfg.Storage.CacheTTL())
	assert.Equal(t, 64, cfg.Storage.PersistQueue)

	assert.InDelta(t, 1024.0, cfg.Game.CanvasWidth, 0)
	assert.InDelta(t, 768.0, cfg.Game.CanvasHeight, 0)
	assert.Equal(t, 500*time.Millisecond, cfg.Game.AutoEndDelay())

	assert.Len(t, cfg.Security.AllowedOrigins, 2)
	assert.Equal(t, 50, cfg.Security.MessageLimit.MaxPerSecond)
	assert.Equal(t, 5, cfg.Security.MessageLimit.JoinsPerMinute)
	assert.Equal(t, 20, cfg.Security.RateLimit.MaxPerSecond)
	assert.Equal(t, 120, cfg.Security.RateLimit.MaxPerMinute)
	assert.Equal(t, 2*time.Minute, cfg.Security.RateLimit.BanDurationTime())
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_FileNotFound(t *testing.T) {
	t.Parallel()

	cfg, err := Load("/nonexistent/path/config.yaml")
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_InvalidYAML(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeConfig(t, "invalid: yaml: :::"))
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_AppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `{}`))
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, defaultHost, cfg.Server.Host)
	assert.Equal(t, defaultPort, cfg.Server.Port)
	assert.Equal(t, defaultMaxConnections, cfg.Server.MaxConnections)
	assert.Equal(t, DriverRedis, cfg.Storage.Driver)
	assert.Equal(t, defaultRedisAddr, cfg.Storage.Redis.Addr)
	assert.Equal(t, defaultPersistQueue, cfg.Storage.PersistQueue)
	assert.Zero(t, cfg.Storage.KeyTTLDuration())
	assert.Equal(t, 300*time.Millisecond, cfg.Game.AutoEndDelay())
	assert.InDelta(t, 800.0, cfg.Game.CanvasWidth, 0)
	assert.InDelta(t, 600.0, cfg.Game.CanvasHeight, 0)
	assert.Equal(t, []string{"*"}, cfg.Security.AllowedOrigins)
	assert.Equal(t, defaultMessagesPerSecond, cfg.Security.MessageLimit.MaxPerSecond)
	assert.Equal(t, defaultJoinsPerMinute, cfg.Security.MessageLimit.JoinsPerMinute)
	assert.Equal(t, defaultConnectsPerSecond, cfg.Security.RateLimit.MaxPerSecond)
	assert.Equal(t, defaultConnectsPerMinute, cfg.Security.RateLimit.MaxPerMinute)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestDefault(t *testing.T) {
	// Not parallel: environment overrides are read

	cfg := Default()
	require.NotNil(t, cfg)

	assert.Equal(t, defaultHost, cfg.Server.Host)
	assert.Equal(t, defaultPort, cfg.Server.Port)
	assert.Equal(t, defaultAutoEndDelayMS, cfg.Game.AutoEndDelayMS)
}

func TestLoadFromEnv(t *testing.T) {
	// Not parallel because it modifies environment variables
	t.Setenv("SERVER_HOST", "env-host")
	t.Setenv("SERVER_PORT", "9999")
	t.Setenv("STORAGE_DRIVER", "postgres")
	t.Setenv("REDIS_ADDR", "env-redis:6380")
	t.Setenv("POSTGRES_DSN", "postgres://u:p@db/pnp")
	t.Setenv("SECURITY_ALLOWED_ORIGINS", "http://a.com, http://b.com,")

	cfg, err := Load(writeConfig(t, `{}`))
	require.NoError(t, err)

	assert.Equal(t, "env-host", cfg.Server.Host)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, DriverPostgres, cfg.Storage.Driver)
	assert.Equal(t, "env-redis:6380", cfg.Storage.Redis.Addr)
	assert.Equal(t, "postgres://u:p@db/pnp", cfg.Storage.Postgres.DSN)
	assert.Equal(t, []string{"http://a.com", "http://b.com"}, cfg.Security.AllowedOrigins)
}

func TestLoadFromEnv_InvalidPortIgnored(t *testing.T) {
	t.Setenv("SERVER_PORT", "not-a-port")

	cfg := Default()
	assert.Equal(t, defaultPort, cfg.Server.Port)
}
