package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/paint-n-pass/internal/config"
	"github.com/palemoky/paint-n-pass/internal/game/state"
	"github.com/palemoky/paint-n-pass/internal/protocol"
	"github.com/palemoky/paint-n-pass/internal/storage"
	"github.com/palemoky/paint-n-pass/internal/testutil"
)

func newTestServer(t *testing.T, mutate func(*config.Config)) (*Server, *httptest.Server) {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}
	s := NewServer(cfg, storage.NewMemoryStore())
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = s.Shutdown(ctx)
		ts.Close()
	})
	return s, ts
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, msgType protocol.MessageType, payload any) {
	t.Helper()
	data, err := protocol.MustNewMessage(msgType, payload).Encode()
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, data))
}

// readUntil 读取消息直到出现指定类型，ping 之类的控制帧由 gorilla 自动处理
func readUntil(t *testing.T, conn *websocket.Conn, want protocol.MessageType) *protocol.Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		_, data, err := conn.ReadMessage()
		require.NoError(t, err, "waiting for %s", want)
		msg, err := protocol.Decode(data)
		require.NoError(t, err)
		if msg.Type == want {
			return msg
		}
	}
}

func sampleState(gameID string) *state.GameState {
	s := state.New(800, 600, gameID)
	return state.Apply(s, state.AddStroke{Path: []state.Point{{X: 1, Y: 1}, {X: 4, Y: 5}}, Color: "#E53935", Width: 3})
}

// waitOnline 等待服务端注册完成
func waitOnline(t *testing.T, s *Server, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return s.GetOnlineCount() == n }, 2*time.Second, 10*time.Millisecond)
}

func TestServer_RegisterUnregister_Concurrency(t *testing.T) {
	t.Parallel()

	s := &Server{clients: make(map[string]*Client)}

	const count = 100
	clients := make([]*Client, count)
	for i := range clients {
		clients[i] = &Client{id: fmt.Sprintf("c%d", i)}
	}

	var wg sync.WaitGroup
	for _, c := range clients {
		wg.Go(func() { s.registerClient(c) })
	}
	wg.Wait()
	assert.Equal(t, count, s.GetOnlineCount())

	for _, c := range clients {
		wg.Go(func() { s.unregisterClient(c) })
	}
	wg.Wait()
	assert.Equal(t, 0, s.GetOnlineCount())
}

func TestServer_HandleHealth(t *testing.T) {
	t.Parallel()

	s := &Server{}
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	s.handleHealth(w, req)

	res := w.Result()
	defer res.Body.Close()
	body, _ := io.ReadAll(res.Body)

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "OK", string(body))
}

func TestServer_RelayJoinAndUpdate(t *testing.T) {
	t.Parallel()

	s, ts := newTestServer(t, nil)
	host := dial(t, ts)
	guest := dial(t, ts)
	waitOnline(t, s, 2)

	send(t, host, protocol.MsgJoinGame, protocol.JoinGamePayload{GameID: "ROOM42", IsPlayer1: true})
	require.Eventually(t, func() bool { return s.Relay().Rooms().Size("ROOM42") == 1 }, 2*time.Second, 10*time.Millisecond)

	send(t, guest, protocol.MsgJoinGame, protocol.JoinGamePayload{GameID: "ROOM42", IsPlayer1: false})
	joined, err := protocol.ParsePayload[protocol.PlayerJoinedPayload](readUntil(t, host, protocol.MsgPlayerJoined))
	require.NoError(t, err)
	assert.False(t, joined.IsPlayer1)
	assert.NotEmpty(t, joined.PlayerID)

	gs := sampleState("ROOM42")
	send(t, host, protocol.MsgUpdateGame, protocol.UpdateGamePayload{GameID: "ROOM42", GameState: gs})
	updated, err := protocol.ParsePayload[protocol.GameUpdatedPayload](readUntil(t, guest, protocol.MsgGameUpdated))
	require.NoError(t, err)
	assert.Equal(t, gs, updated.GameState)

	// 更新被持久化后，通过 HTTP 接口可读到
	require.Eventually(t, func() bool {
		res, err := http.Get(ts.URL + "/games/ROOM42")
		if err != nil {
			return false
		}
		defer res.Body.Close()
		return res.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)
}

func TestServer_LateJoinerGetsSnapshot(t *testing.T) {
	t.Parallel()

	s, ts := newTestServer(t, nil)
	gs := sampleState("LATE01")
	require.NoError(t, s.store.Upsert(context.Background(), "LATE01", gs))

	late := dial(t, ts)
	send(t, late, protocol.MsgJoinGame, protocol.JoinGamePayload{GameID: "LATE01", IsPlayer1: false})

	snap, err := protocol.ParsePayload[protocol.GameUpdatedPayload](readUntil(t, late, protocol.MsgGameUpdated))
	require.NoError(t, err)
	assert.Equal(t, gs, snap.GameState)
}

func TestServer_PingAndUnknownType(t *testing.T) {
	t.Parallel()

	_, ts := newTestServer(t, nil)
	conn := dial(t, ts)

	send(t, conn, protocol.MsgPing, protocol.PingPayload{Timestamp: 42})
	pong, err := protocol.ParsePayload[protocol.PongPayload](readUntil(t, conn, protocol.MsgPong))
	require.NoError(t, err)
	assert.Equal(t, int64(42), pong.ClientTimestamp)
	assert.Positive(t, pong.ServerTimestamp)

	send(t, conn, protocol.MessageType("draw_now"), nil)
	errPayload, err := protocol.ParsePayload[protocol.ErrorPayload](readUntil(t, conn, protocol.MsgError))
	require.NoError(t, err)
	assert.Equal(t, protocol.ErrCodeInvalidMsg, errPayload.Code)
}

func TestServer_JoinBurstIsLimited(t *testing.T) {
	t.Parallel()

	_, ts := newTestServer(t, func(c *config.Config) {
		c.Security.MessageLimit.JoinsPerMinute = 2
	})
	conn := dial(t, ts)

	for _, id := range []string{"AAA111", "BBB222", "CCC333"} {
		send(t, conn, protocol.MsgJoinGame, protocol.JoinGamePayload{GameID: id, IsPlayer1: true})
	}
	errPayload, err := protocol.ParsePayload[protocol.ErrorPayload](readUntil(t, conn, protocol.MsgError))
	require.NoError(t, err)
	assert.Equal(t, protocol.ErrCodeRateLimit, errPayload.Code)

	// 心跳照常
	send(t, conn, protocol.MsgPing, protocol.PingPayload{Timestamp: 7})
	pong, err := protocol.ParsePayload[protocol.PongPayload](readUntil(t, conn, protocol.MsgPong))
	require.NoError(t, err)
	assert.Equal(t, int64(7), pong.ClientTimestamp)
}

func TestServer_MalformedFrame(t *testing.T) {
	t.Parallel()

	_, ts := newTestServer(t, nil)
	conn := dial(t, ts)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	errPayload, err := protocol.ParsePayload[protocol.ErrorPayload](readUntil(t, conn, protocol.MsgError))
	require.NoError(t, err)
	assert.Equal(t, protocol.ErrCodeInvalidMsg, errPayload.Code)
}

func TestServer_DisconnectLeavesRoom(t *testing.T) {
	t.Parallel()

	s, ts := newTestServer(t, nil)
	conn := dial(t, ts)
	send(t, conn, protocol.MsgJoinGame, protocol.JoinGamePayload{GameID: "BYE001", IsPlayer1: true})
	require.Eventually(t, func() bool { return s.Relay().Rooms().Exists("BYE001") }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool {
		return !s.Relay().Rooms().Exists("BYE001") && s.GetOnlineCount() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestServer_OriginRejected(t *testing.T) {
	t.Parallel()

	_, ts := newTestServer(t, func(c *config.Config) {
		c.Security.AllowedOrigins = []string{"https://paint.example"}
	})

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	header := http.Header{"Origin": []string{"https://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestServer_ServerFull(t *testing.T) {
	t.Parallel()

	_, ts := newTestServer(t, func(c *config.Config) {
		c.Server.MaxConnections = 1
	})
	dial(t, ts)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Server is full")
}

func TestServer_GamesAPIShared(t *testing.T) {
	t.Parallel()

	_, ts := newTestServer(t, nil)
	body, err := json.Marshal(sampleState("API001"))
	require.NoError(t, err)

	res, err := http.Post(ts.URL+"/games/API001", "application/json", strings.NewReader(string(body)))
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	res, err = http.Get(ts.URL + "/games/NOPE01")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestServer_ShutdownFlushesAndIsIdempotent(t *testing.T) {
	t.Parallel()

	store := storage.NewMemoryStore()
	s := NewServer(config.Default(), store)
	s.Relay().Update(testutil.NewSimpleConn("solo"), "FLUSH1", sampleState("FLUSH1"))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))
	require.NoError(t, s.Shutdown(ctx))

	_, ok := store.Record("FLUSH1")
	assert.True(t, ok)
}
