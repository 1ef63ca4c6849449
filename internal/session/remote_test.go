package session

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/paint-n-pass/internal/config"
	"github.com/palemoky/paint-n-pass/internal/game/state"
	"github.com/palemoky/paint-n-pass/internal/server"
	"github.com/palemoky/paint-n-pass/internal/storage"
)

func startRelay(t *testing.T) (string, storage.GameStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	srv := server.NewServer(config.Default(), store)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
		ts.Close()
	})
	return "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws", store
}

func waitEvent(t *testing.T, c *Controller, kind EventKind) Event {
	t.Helper()
	timeout := time.After(3 * time.Second)
	for {
		select {
		case e, ok := <-c.Events():
			require.True(t, ok, "events closed while waiting for %s", kind)
			if e.Kind == kind {
				return e
			}
		case <-timeout:
			t.Fatalf("no %s event", kind)
		}
	}
}

func TestDial_TwoPlayersTakeTurns(t *testing.T) {
	t.Parallel()

	url, store := startRelay(t)
	opts := Options{GameID: "ABC123", Width: 800, Height: 600}

	hostOpts := opts
	hostOpts.Player = state.Player1
	host, err := Dial(url, hostOpts)
	require.NoError(t, err)
	t.Cleanup(host.Close)

	// 画笔变更会被持久化，guest 的追帧快照据此可辨认
	brush := state.BrushSettings{Color: "#27AE60", Width: 8}
	host.SetBrush(brush)
	require.Eventually(t, func() bool {
		rec, err := store.Get(context.Background(), "ABC123")
		return err == nil && rec != nil && rec.ActiveTurn().BrushSettings == brush
	}, 2*time.Second, 10*time.Millisecond)

	guestOpts := opts
	guestOpts.Player = state.Player2
	guest, err := Dial(url, guestOpts)
	require.NoError(t, err)
	t.Cleanup(guest.Close)

	joined := waitEvent(t, host, EventPlayerJoined)
	assert.Equal(t, "Player 2 joined the game!", joined.Message)
	assert.False(t, guest.CanDraw())
	require.Eventually(t, func() bool {
		return guest.State().ActiveTurn().BrushSettings == brush
	}, 3*time.Second, 10*time.Millisecond)

	stroke := []state.Point{{X: 10, Y: 10}, {X: 40, Y: 50}}
	require.True(t, host.CompleteStroke(stroke))
	host.EndTurn()

	require.Eventually(t, func() bool { return guest.State().CurrentTurn == 2 }, 3*time.Second, 10*time.Millisecond)
	s := guest.State()
	assert.Equal(t, state.Player2, s.CurrentPlayer)
	require.Len(t, s.Turns, 2)
	require.Len(t, s.Turns[0].Strokes, 1)
	assert.Equal(t, stroke, s.Turns[0].Strokes[0].Path)
	assert.Equal(t, state.Player1, s.Turns[0].Strokes[0].Player)
	assert.True(t, guest.CanDraw())
	assert.False(t, host.CanDraw())
}

func TestDial_LateJoinerCatchesUp(t *testing.T) {
	t.Parallel()

	url, store := startRelay(t)
	saved := state.Apply(state.New(800, 600, "LATE42"), state.AddStroke{Path: twoPoints, Color: "#000000", Width: 3})
	saved = state.Apply(saved, state.EndTurn{})
	require.NoError(t, store.Upsert(context.Background(), "LATE42", saved))

	guest, err := Dial(url, Options{GameID: "LATE42", Width: 800, Height: 600, Player: state.Player2})
	require.NoError(t, err)
	t.Cleanup(guest.Close)

	require.Eventually(t, func() bool { return guest.State().CurrentTurn == 2 }, 3*time.Second, 10*time.Millisecond)
	assert.Equal(t, saved.AllStrokes(), guest.State().AllStrokes())
	assert.True(t, guest.CanDraw())
}

func TestDial_Unreachable(t *testing.T) {
	t.Parallel()

	c, err := Dial("ws://127.0.0.1:1/ws", Options{GameID: "ABC123", Player: state.Player1})
	require.Error(t, err)
	assert.Nil(t, c)
}
