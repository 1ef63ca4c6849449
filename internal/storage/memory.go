package storage

import (
	"context"
	"sync"

	"github.com/palemoky/paint-n-pass/internal/game/state"
)

// MemoryStore 进程内存储，用于测试和不需要持久化的单机部署
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*GameRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*GameRecord)}
}

func (m *MemoryStore) Get(_ context.Context, gameID string) (*state.GameState, error) {
	rec, _ := m.Record(gameID)
	if rec == nil {
		return nil, nil
	}
	return rec.Decode()
}

// Record 返回记录副本
func (m *MemoryStore) Record(gameID string) (*GameRecord, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[gameID]
	if !ok {
		return nil, false
	}
	cp := *rec
	return &cp, true
}

func (m *MemoryStore) Upsert(_ context.Context, gameID string, s *state.GameState) error {
	rec, err := newRecord(gameID, s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.records[gameID] = rec
	m.mu.Unlock()
	return nil
}

// Len 已保存的对局数
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

func (m *MemoryStore) Close() error { return nil }
