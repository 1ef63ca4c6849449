package client

import (
	"time"

	"github.com/palemoky/paint-n-pass/internal/game/state"
	"github.com/palemoky/paint-n-pass/internal/protocol"
)

// --- 便捷方法 ---

// JoinGame 加入对局房间，重连时会自动重新加入
func (c *Client) JoinGame(gameID string, isPlayer1 bool) error {
	c.mu.Lock()
	c.gameID = gameID
	c.isPlayer1 = isPlayer1
	c.mu.Unlock()

	return c.SendMessage(protocol.MustNewMessage(protocol.MsgJoinGame, protocol.JoinGamePayload{
		GameID:    gameID,
		IsPlayer1: isPlayer1,
	}))
}

// UpdateGame 推送完整状态
func (c *Client) UpdateGame(gameID string, s *state.GameState) error {
	if gameID == "" {
		return ErrNotJoined
	}
	msg, err := protocol.NewMessage(protocol.MsgUpdateGame, protocol.UpdateGamePayload{
		GameID:    gameID,
		GameState: s,
	})
	if err != nil {
		return err
	}
	return c.SendMessage(msg)
}

// Ping 发送心跳
func (c *Client) Ping() error {
	return c.SendMessage(protocol.MustNewMessage(protocol.MsgPing, protocol.PingPayload{
		Timestamp: time.Now().UnixMilli(),
	}))
}
