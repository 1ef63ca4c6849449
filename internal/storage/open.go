package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/palemoky/paint-n-pass/internal/config"
	"github.com/palemoky/paint-n-pass/internal/logger"
)

// Open 按 cfg.Driver 创建存储，开启缓存时外包一层读缓存
func Open(ctx context.Context, cfg config.StorageConfig) (GameStore, error) {
	var (
		store GameStore
		err   error
	)

	switch cfg.Driver {
	case config.DriverRedis:
		store, err = openRedis(ctx, cfg)
	case config.DriverSQLite:
		store, err = NewSQLiteStore(ctx, cfg.SQLite.Path)
	case config.DriverPostgres:
		store, err = NewPostgresStore(ctx, cfg.Postgres.DSN)
	case config.DriverMemory:
		store = NewMemoryStore()
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	logger.Info("Storage driver: %s", cfg.Driver)

	if !cfg.Cache.Enabled {
		return store, nil
	}
	cached, err := NewCachedStore(store, 0, cfg.CacheTTL())
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return cached, nil
}

func openRedis(ctx context.Context, cfg config.StorageConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("Redis 连接失败: %w", err)
	}
	logger.Info("Redis 连接成功: %s", cfg.Redis.Addr)

	return NewRedisStore(client, cfg.KeyTTLDuration()), nil
}
