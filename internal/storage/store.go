// Package storage persists one GameState snapshot per game id.
//
// Every backend implements the same two operations with the same semantics:
// Get returns (nil, nil) when nothing is stored under the id, and Upsert
// creates or overwrites the record and stamps its update time. Concurrent
// upserts to one id are resolved by the backend, last write wins.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/palemoky/paint-n-pass/internal/game/state"
)

// GameStore 中继和 API 共用的存储接口
type GameStore interface {
	Get(ctx context.Context, gameID string) (*state.GameState, error)
	Upsert(ctx context.Context, gameID string, s *state.GameState) error
	Close() error
}

// GameRecord 存储记录：序列化的状态和最后写入时间
type GameRecord struct {
	ID        string    `json:"id"`
	State     string    `json:"state"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// newRecord 序列化 s 并打上当前时间
func newRecord(gameID string, s *state.GameState) (*GameRecord, error) {
	if s == nil {
		return nil, fmt.Errorf("game %s: nil state", gameID)
	}
	data, err := s.Marshal()
	if err != nil {
		return nil, fmt.Errorf("序列化对局状态失败: %w", err)
	}
	return &GameRecord{ID: gameID, State: string(data), UpdatedAt: time.Now().UTC()}, nil
}

// Decode 解析存储的状态
func (r *GameRecord) Decode() (*state.GameState, error) {
	s, err := state.Unmarshal([]byte(r.State))
	if err != nil {
		return nil, fmt.Errorf("反序列化对局状态失败 (%s): %w", r.ID, err)
	}
	return s, nil
}

func encodeRecord(r *GameRecord) ([]byte, error) {
	return json.Marshal(r)
}

func decodeRecord(data []byte) (*GameRecord, error) {
	var r GameRecord
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("反序列化存储记录失败: %w", err)
	}
	return &r, nil
}
