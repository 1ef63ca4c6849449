package client

import (
	"time"

	"github.com/gorilla/websocket"

	"github.com/palemoky/paint-n-pass/internal/logger"
	"github.com/palemoky/paint-n-pass/internal/protocol"
)

// StartHeartbeat 启动心跳检测
func (c *Client) StartHeartbeat() {
	go func() {
		ticker := time.NewTicker(heartbeatInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if c.IsConnected() {
					_ = c.Ping()
				}
			case <-c.done:
				return
			}
		}
	}()
}

// tryReconnect 尝试重连。成功后重新发送 join_game，
// 服务端会回一份持久化快照，断线期间的消息不会重放。
func (c *Client) tryReconnect() {
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
			c.reconnecting.Store(false)
		}
	}()

	if !c.reconnecting.CompareAndSwap(false, true) {
		return
	}

	// 指数退避重连策略
	backoff := c.ReconnectInterval
	if backoff <= 0 {
		backoff = reconnectInterval
	}

	for c.reconnectCount < maxReconnectAttempts {
		c.reconnectCount++
		logger.Info("尝试重连 (%d/%d)...", c.reconnectCount, maxReconnectAttempts)
		if c.OnReconnecting != nil {
			c.OnReconnecting(c.reconnectCount, maxReconnectAttempts)
		}

		select {
		case <-time.After(backoff):
		case <-c.done:
			c.reconnecting.Store(false)
			return
		}

		// 计算下一次退避时间
		backoff = min(backoff*2, maxReconnectBackoff)

		conn, err := c.dial()
		if err != nil {
			logger.Warn("重连失败: %v", err)
			continue
		}

		// 先于排队中的更新重新加入房间
		if err := c.rejoin(conn); err != nil {
			logger.Warn("重新加入对局失败: %v", err)
			_ = conn.Close()
			continue
		}

		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			_ = conn.Close()
			c.reconnecting.Store(false)
			return
		}
		c.conn = conn
		c.mu.Unlock()

		c.reconnectCount = 0
		c.reconnecting.Store(false)
		c.start(conn)

		logger.Info("重连成功")
		if c.OnReconnect != nil {
			c.OnReconnect()
		}
		return
	}

	// 重连失败
	logger.Error("重连失败，已达最大尝试次数")
	c.reconnecting.Store(false)
	c.Close()
	if c.OnClose != nil {
		c.OnClose()
	}
}

func (c *Client) rejoin(conn *websocket.Conn) error {
	c.mu.RLock()
	payload := protocol.JoinGamePayload{GameID: c.gameID, IsPlayer1: c.isPlayer1}
	c.mu.RUnlock()

	data, err := protocol.MustNewMessage(protocol.MsgJoinGame, payload).Encode()
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, data)
}

// Latency 获取当前延迟（毫秒）
func (c *Client) Latency() int64 {
	return c.latency.Load()
}

// IsReconnecting 是否正在重连
func (c *Client) IsReconnecting() bool {
	return c.reconnecting.Load()
}
