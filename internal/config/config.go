package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// 默认值
const (
	defaultHost           = "0.0.0.0"
	defaultPort           = 3001
	defaultMaxConnections = 1000

	defaultDriver       = DriverRedis
	defaultRedisAddr    = "localhost:6379"
	defaultSQLitePath   = "paint-n-pass.db"
	defaultCacheTTL     = 60
	defaultPersistQueue = 256

	defaultCanvasWidth    = 800
	defaultCanvasHeight   = 600
	defaultAutoEndDelayMS = 300

	defaultMessagesPerSecond = 30
	defaultJoinsPerMinute    = 20
	defaultConnectsPerSecond = 10
	defaultConnectsPerMinute = 60
	defaultBanDuration       = 60
	defaultLogLevel          = "info"
)

// 存储驱动
const (
	DriverRedis    = "redis"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config 全局配置
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Game     GameConfig     `yaml:"game"`
	Security SecurityConfig `yaml:"security"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig WebSocket / HTTP 服务器配置
type ServerConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	MaxConnections int    `yaml:"max_connections"`
	Debug          bool   `yaml:"debug"` // 挂载 /debug/statsviz/
}

// StorageConfig 持久化配置
type StorageConfig struct {
	Driver       string         `yaml:"driver"`
	Redis        RedisConfig    `yaml:"redis"`
	SQLite       SQLiteConfig   `yaml:"sqlite"`
	Postgres     PostgresConfig `yaml:"postgres"`
	KeyTTL       int            `yaml:"key_ttl"` // Redis 记录过期时间（小时），0 表示不过期
	Cache        CacheConfig    `yaml:"cache"`
	PersistQueue int            `yaml:"persist_queue"` // 异步写入队列长度
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// SQLiteConfig SQLite 配置
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// PostgresConfig Postgres 配置
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// CacheConfig 读缓存配置
type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	TTL     int  `yaml:"ttl"` // 秒
}

// GameConfig 对局配置
type GameConfig struct {
	CanvasWidth    float64 `yaml:"canvas_width"`
	CanvasHeight   float64 `yaml:"canvas_height"`
	AutoEndDelayMS int     `yaml:"auto_end_delay_ms"` // 墨水耗尽后自动结束回合的延迟（毫秒）
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	AllowedOrigins []string           `yaml:"allowed_origins"`
	RateLimit      RateLimitConfig    `yaml:"rate_limit"`
	MessageLimit   MessageLimitConfig `yaml:"message_limit"`
}

// RateLimitConfig 按 IP 的连接速率限制
type RateLimitConfig struct {
	MaxPerSecond int `yaml:"max_per_second"`
	MaxPerMinute int `yaml:"max_per_minute"`
	BanDuration  int `yaml:"ban_duration"` // 秒
}

// MessageLimitConfig 单连接消息速率限制
type MessageLimitConfig struct {
	MaxPerSecond   int `yaml:"max_per_second"`    // 心跳以外的消息
	JoinsPerMinute int `yaml:"joins_per_minute"` // join_game 会读取快照，单独限制
}

// LogConfig 日志配置
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"` // 仅客户端使用
}

// BanDurationTime 返回封禁时长
func (c *RateLimitConfig) BanDurationTime() time.Duration {
	return time.Duration(c.BanDuration) * time.Second
}

// AutoEndDelay 返回自动结束回合延迟
func (c *GameConfig) AutoEndDelay() time.Duration {
	return time.Duration(c.AutoEndDelayMS) * time.Millisecond
}

// CacheTTL 返回缓存过期时长
func (c *StorageConfig) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTL) * time.Second
}

// KeyTTLDuration 返回 Redis 记录过期时长
func (c *StorageConfig) KeyTTLDuration() time.Duration {
	return time.Duration(c.KeyTTL) * time.Hour
}

// Load 加载配置文件，缺省字段使用默认值，环境变量优先
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	cfg.applyEnv()
	return &cfg, nil
}

// Default 返回默认配置（环境变量仍然生效）
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	cfg.applyEnv()
	return &cfg
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = defaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = defaultPort
	}
	if c.Server.MaxConnections == 0 {
		c.Server.MaxConnections = defaultMaxConnections
	}

	if c.Storage.Driver == "" {
		c.Storage.Driver = defaultDriver
	}
	if c.Storage.Redis.Addr == "" {
		c.Storage.Redis.Addr = defaultRedisAddr
	}
	if c.Storage.SQLite.Path == "" {
		c.Storage.SQLite.Path = defaultSQLitePath
	}
	if c.Storage.Cache.TTL == 0 {
		c.Storage.Cache.TTL = defaultCacheTTL
	}
	if c.Storage.PersistQueue == 0 {
		c.Storage.PersistQueue = defaultPersistQueue
	}

	if c.Game.CanvasWidth == 0 {
		c.Game.CanvasWidth = defaultCanvasWidth
	}
	if c.Game.CanvasHeight == 0 {
		c.Game.CanvasHeight = defaultCanvasHeight
	}
	if c.Game.AutoEndDelayMS == 0 {
		c.Game.AutoEndDelayMS = defaultAutoEndDelayMS
	}

	if len(c.Security.AllowedOrigins) == 0 {
		c.Security.AllowedOrigins = []string{"*"}
	}
	if c.Security.RateLimit.MaxPerSecond == 0 {
		c.Security.RateLimit.MaxPerSecond = defaultConnectsPerSecond
	}
	if c.Security.RateLimit.MaxPerMinute == 0 {
		c.Security.RateLimit.MaxPerMinute = defaultConnectsPerMinute
	}
	if c.Security.RateLimit.BanDuration == 0 {
		c.Security.RateLimit.BanDuration = defaultBanDuration
	}
	if c.Security.MessageLimit.MaxPerSecond == 0 {
		c.Security.MessageLimit.MaxPerSecond = defaultMessagesPerSecond
	}
	if c.Security.MessageLimit.JoinsPerMinute == 0 {
		c.Security.MessageLimit.JoinsPerMinute = defaultJoinsPerMinute
	}

	if c.Log.Level == "" {
		c.Log.Level = defaultLogLevel
	}
}

// applyEnv 环境变量覆盖（容器部署）
func (c *Config) applyEnv() {
	setString(&c.Server.Host, "SERVER_HOST")
	setInt(&c.Server.Port, "SERVER_PORT")
	setString(&c.Storage.Driver, "STORAGE_DRIVER")
	setString(&c.Storage.Redis.Addr, "REDIS_ADDR")
	setString(&c.Storage.Redis.Password, "REDIS_PASSWORD")
	setString(&c.Storage.SQLite.Path, "SQLITE_PATH")
	setString(&c.Storage.Postgres.DSN, "POSTGRES_DSN")
	setString(&c.Log.Level, "LOG_LEVEL")

	if v := os.Getenv("SECURITY_ALLOWED_ORIGINS"); v != "" {
		var origins []string
		for o := range strings.SplitSeq(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		if len(origins) > 0 {
			c.Security.AllowedOrigins = origins
		}
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
