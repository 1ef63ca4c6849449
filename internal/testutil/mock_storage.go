//go:build !production

package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/palemoky/paint-n-pass/internal/game/state"
)

// MockGameStore 实现 storage.GameStore 的 mock
type MockGameStore struct {
	mock.Mock
}

func (m *MockGameStore) Get(ctx context.Context, gameID string) (*state.GameState, error) {
	args := m.Called(ctx, gameID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*state.GameState), args.Error(1)
}

func (m *MockGameStore) Upsert(ctx context.Context, gameID string, s *state.GameState) error {
	args := m.Called(ctx, gameID, s)
	return args.Error(0)
}

func (m *MockGameStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
