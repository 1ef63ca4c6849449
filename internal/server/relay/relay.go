// Package relay fans game snapshots out between the members of a game room
// and keeps the last relayed snapshot of every game in the store.
package relay

import (
	"context"
	"time"

	"github.com/palemoky/paint-n-pass/internal/apperrors"
	"github.com/palemoky/paint-n-pass/internal/game/state"
	"github.com/palemoky/paint-n-pass/internal/logger"
	"github.com/palemoky/paint-n-pass/internal/protocol"
	"github.com/palemoky/paint-n-pass/internal/storage"
)

// Relay 分发参与者消息，可被各连接的读协程并发调用
type Relay struct {
	rooms  *Rooms
	store  storage.GameStore
	worker *PersistWorker
}

type Options struct {
	Store     storage.GameStore
	QueueSize int
}

func New(opts Options) *Relay {
	return &Relay{
		rooms: NewRooms(),
		store: opts.Store,
		worker: NewPersistWorker(PersistWorkerOptions{
			Store:     opts.Store,
			QueueSize: opts.QueueSize,
		}),
	}
}

// Rooms 房间成员表
func (r *Relay) Rooms() *Rooms {
	return r.rooms
}

// Handle 处理 c 发来的一条消息
func (r *Relay) Handle(ctx context.Context, c Conn, msg *protocol.Message) {
	switch msg.Type {
	case protocol.MsgJoinGame:
		payload, err := protocol.ParsePayload[protocol.JoinGamePayload](msg)
		if err != nil {
			logger.Warn("Malformed join_game from %s: %v", c.ID(), err)
			return
		}
		r.Join(ctx, c, payload.GameID, payload.IsPlayer1)

	case protocol.MsgUpdateGame:
		payload, err := protocol.ParsePayload[protocol.UpdateGamePayload](msg)
		if err != nil {
			logger.Warn("Malformed update_game from %s: %v", c.ID(), err)
			return
		}
		r.Update(c, payload.GameID, payload.GameState)

	case protocol.MsgPing:
		r.pong(c, msg)

	default:
		c.Send(apperrors.ToMessage(apperrors.ErrInvalidMessage))
	}
}

// Join 把 c 加入 gameID 房间并通知其他成员，再把已保存的快照发给 c。
// 缺失或格式错误的 id 直接忽略。
func (r *Relay) Join(ctx context.Context, c Conn, gameID string, isPlayer1 bool) {
	if !state.ValidGameID(gameID) {
		logger.Warn("Ignoring join with invalid game id %q from %s", gameID, c.ID())
		return
	}

	others := r.rooms.Join(gameID, c)
	logger.Info("Connection %s joined game %s (player1=%t, members=%d)", c.ID(), gameID, isPlayer1, len(others)+1)

	if len(others) > 0 {
		joined := protocol.MustNewMessage(protocol.MsgPlayerJoined, protocol.PlayerJoinedPayload{
			PlayerID:  c.ID(),
			IsPlayer1: isPlayer1,
		})
		for _, m := range others {
			m.Send(joined)
		}
	}

	if r.store == nil {
		return
	}
	snapshot, err := r.store.Get(ctx, gameID)
	if err != nil {
		logger.Error("Failed to load game %s: %v", gameID, err)
		return
	}
	if snapshot != nil {
		c.Send(protocol.MustNewMessage(protocol.MsgGameUpdated, protocol.GameUpdatedPayload{GameState: snapshot}))
	}
}

// Update 把 s 转发给房间内其他成员并排队保存，缺少 id 或状态时忽略
func (r *Relay) Update(c Conn, gameID string, s *state.GameState) {
	if gameID == "" || s == nil {
		logger.Warn("Ignoring update_game without game id or state from %s", c.ID())
		return
	}

	others := r.rooms.Others(gameID, c.ID())
	if len(others) > 0 {
		updated := protocol.MustNewMessage(protocol.MsgGameUpdated, protocol.GameUpdatedPayload{GameState: s})
		for _, m := range others {
			m.Send(updated)
		}
	}

	if r.store != nil && state.ValidGameID(gameID) {
		r.worker.Enqueue(gameID, s)
	}
}

// Disconnect 把 c 移出所有房间
func (r *Relay) Disconnect(c Conn) {
	for _, gameID := range r.rooms.Leave(c.ID()) {
		logger.Info("Room %s is empty, removed", gameID)
	}
}

// Close 写完排队中的快照
func (r *Relay) Close(ctx context.Context) error {
	return r.worker.Close(ctx)
}

// PendingSaves 等待写入的快照数
func (r *Relay) PendingSaves() int {
	return r.worker.Pending()
}

func (r *Relay) pong(c Conn, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.PingPayload](msg)
	if err != nil {
		return
	}
	c.Send(protocol.MustNewMessage(protocol.MsgPong, protocol.PongPayload{
		ClientTimestamp: payload.Timestamp,
		ServerTimestamp: time.Now().UnixMilli(),
	}))
}
