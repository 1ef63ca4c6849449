package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/palemoky/paint-n-pass/internal/game/state"
)

// Redis key 前缀
const gameKeyPrefix = "game:"

// RedisStore Redis 存储，每个对局一个 JSON 记录
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore 创建 Redis 存储，ttl 为 0 表示记录不过期
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func gameKey(gameID string) string {
	return gameKeyPrefix + gameID
}

// Get 读取对局状态，不存在时返回 (nil, nil)
func (rs *RedisStore) Get(ctx context.Context, gameID string) (*state.GameState, error) {
	rec, err := rs.Record(ctx, gameID)
	if err != nil || rec == nil {
		return nil, err
	}
	return rec.Decode()
}

// Record 读取原始存储记录
func (rs *RedisStore) Record(ctx context.Context, gameID string) (*GameRecord, error) {
	data, err := rs.client.Get(ctx, gameKey(gameID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // 对局不存在
		}
		return nil, fmt.Errorf("redis get %s: %w", gameID, err)
	}
	return decodeRecord(data)
}

// Upsert 写入对局状态（覆盖旧记录，刷新过期时间）
func (rs *RedisStore) Upsert(ctx context.Context, gameID string, s *state.GameState) error {
	rec, err := newRecord(gameID, s)
	if err != nil {
		return err
	}
	data, err := encodeRecord(rec)
	if err != nil {
		return err
	}
	if err := rs.client.Set(ctx, gameKey(gameID), data, rs.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", gameID, err)
	}
	return nil
}

// Close 关闭连接
func (rs *RedisStore) Close() error {
	return rs.client.Close()
}
