package session

import (
	"fmt"

	"github.com/palemoky/paint-n-pass/internal/logger"
	"github.com/palemoky/paint-n-pass/internal/network/client"
	"github.com/palemoky/paint-n-pass/internal/protocol"
)

// HandleMessage 处理中继下发的消息
func (c *Controller) HandleMessage(msg *protocol.Message) {
	if msg == nil {
		return
	}

	switch msg.Type {
	case protocol.MsgGameUpdated:
		p, err := protocol.ParsePayload[protocol.GameUpdatedPayload](msg)
		if err != nil {
			logger.Warn("game_updated 解析失败: %v", err)
			return
		}
		c.ApplyRemote(p.GameState)

	case protocol.MsgPlayerJoined:
		p, err := protocol.ParsePayload[protocol.PlayerJoinedPayload](msg)
		if err != nil {
			logger.Warn("player_joined 解析失败: %v", err)
			return
		}
		seat := 2
		if p.IsPlayer1 {
			seat = 1
		}
		c.notify(Event{
			Kind:    EventPlayerJoined,
			Message: fmt.Sprintf("Player %d joined the game!", seat),
			Player:  playerOf(p.IsPlayer1),
		})

	case protocol.MsgError:
		if p, err := protocol.ParsePayload[protocol.ErrorPayload](msg); err == nil {
			logger.Warn("服务端错误 %d: %s", p.Code, p.Message)
		}

	case protocol.MsgPong:
		// 延迟由 client 统计

	default:
		logger.Debug("忽略消息 %s", msg.Type)
	}
}

func (c *Controller) notify(e Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.emitLocked(e)
	}
}

// Dial 连接中继并创建多人会话，返回的会话已 Start，失败时不返回会话。
// 断线后 client 自动重连并重新 join，服务端回传的快照会覆盖本地状态。
func Dial(serverURL string, opts Options) (*Controller, error) {
	conn := client.NewClient(serverURL)
	opts.Transport = conn
	c := New(opts)
	c.closeFn = conn.Close

	conn.OnMessage = c.HandleMessage
	conn.OnError = c.ReportConnectionError
	conn.OnReconnecting = func(attempt, maxAttempts int) {
		c.notify(Event{Kind: EventReconnecting, Message: fmt.Sprintf("Reconnecting (%d/%d)...", attempt, maxAttempts)})
	}
	conn.OnReconnect = func() {
		c.notify(Event{Kind: EventReconnected, Message: "Reconnected"})
	}
	conn.OnClose = func() {
		c.ReportConnectionError(client.ErrClosed)
	}

	if err := conn.Connect(); err != nil {
		c.Close()
		return nil, fmt.Errorf("connect %s: %w", serverURL, err)
	}
	conn.StartHeartbeat()

	if err := c.Start(); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}
