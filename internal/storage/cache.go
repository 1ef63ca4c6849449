package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"

	"github.com/palemoky/paint-n-pass/internal/game/state"
)

const defaultCacheMaxCost = 64 << 20

// CachedStore 在任意 GameStore 前加一层本地读缓存（写穿透）。
// 缓存保存序列化后的状态，每次读取都解码出新的副本。
type CachedStore struct {
	next  GameStore
	cache *ristretto.Cache
	ttl   time.Duration
}

// NewCachedStore 创建缓存层，maxCost 为缓存字节上限（<=0 使用 64MB）
func NewCachedStore(next GameStore, maxCost int64, ttl time.Duration) (*CachedStore, error) {
	if maxCost <= 0 {
		maxCost = defaultCacheMaxCost
	}
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e7,
		MaxCost:     maxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("创建 ristretto 缓存失败: %w", err)
	}
	return &CachedStore{next: next, cache: cache, ttl: ttl}, nil
}

func (c *CachedStore) Get(ctx context.Context, gameID string) (*state.GameState, error) {
	if v, ok := c.cache.Get(gameID); ok {
		if data, ok := v.([]byte); ok {
			return state.Unmarshal(data)
		}
	}

	s, err := c.next.Get(ctx, gameID)
	if err != nil || s == nil {
		return s, err
	}
	if data, err := s.Marshal(); err == nil {
		c.cache.SetWithTTL(gameID, data, int64(len(data)), c.ttl)
	}
	return s, nil
}

func (c *CachedStore) Upsert(ctx context.Context, gameID string, s *state.GameState) error {
	if err := c.next.Upsert(ctx, gameID, s); err != nil {
		c.cache.Del(gameID)
		return err
	}
	data, err := s.Marshal()
	if err != nil {
		c.cache.Del(gameID)
		return nil
	}
	if !c.cache.SetWithTTL(gameID, data, int64(len(data)), c.ttl) {
		c.cache.Del(gameID)
	}
	return nil
}

// Wait 等待缓存写入生效（测试用）
func (c *CachedStore) Wait() {
	c.cache.Wait()
}

func (c *CachedStore) Close() error {
	c.cache.Close()
	return c.next.Close()
}
