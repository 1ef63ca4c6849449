package server

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/palemoky/paint-n-pass/internal/apperrors"
	"github.com/palemoky/paint-n-pass/internal/logger"
	"github.com/palemoky/paint-n-pass/internal/protocol"
	"github.com/palemoky/paint-n-pass/internal/protocol/codec"
)

const (
	// 写入超时
	writeWait = 10 * time.Second

	// 读取超时（pong 等待时间）
	pongWait = 60 * time.Second

	// ping 发送间隔（必须小于 pongWait）
	pingPeriod = (pongWait * 9) / 10

	// 消息最大大小，完整快照随笔画增长
	maxMessageSize = 1 << 20

	// 处理单条消息（含加载快照）的超时
	handleTimeout = 5 * time.Second

	// 超限次数达到该值后断开
	maxRateWarnings = 5
)

// Client 代表一个中继连接，实现 relay.Conn
type Client struct {
	IP string // 客户端 IP 地址

	id     string
	server *Server
	conn   *websocket.Conn
	send   chan []byte

	mu     sync.RWMutex
	closed bool
}

// NewClient 创建新客户端
func NewClient(s *Server, conn *websocket.Conn) *Client {
	return &Client{
		id:     uuid.New().String(),
		server: s,
		conn:   conn,
		send:   make(chan []byte, 256),
	}
}

// ID 连接唯一 ID（即 player_joined 中的 playerId）
func (c *Client) ID() string {
	return c.id
}

// ReadPump 从 WebSocket 读取消息
func (c *Client) ReadPump() {
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
		}
		c.handleDisconnect()
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				logger.Warn("读取错误: %v", err)
			}
			break
		}

		msg, err := codec.Decode(message)
		if err != nil {
			logger.Warn("消息解析错误: %v", err)
			c.Send(apperrors.ToMessage(apperrors.ErrInvalidMessage))
			continue
		}

		// 按消息类型限速
		if !c.server.messageLimiter.Allow(c.id, msg.Type) {
			logger.Warn("连接 %s (IP: %s) 发送 %s 过于频繁", c.id, c.IP, msg.Type)
			codec.PutMessage(msg)
			c.Send(apperrors.ToMessage(apperrors.ErrRateLimited))
			if c.server.messageLimiter.Warnings(c.id) > maxRateWarnings {
				logger.Warn("连接 %s 因多次超速被断开", c.id)
				break
			}
			continue
		}

		ctx, cancel := context.WithTimeout(c.server.ctx, handleTimeout)
		c.server.relay.Handle(ctx, c, msg)
		cancel()
		codec.PutMessage(msg)
	}
}

// WritePump 向 WebSocket 写入消息
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// 通道已关闭
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			_, _ = w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Send 发送消息给客户端，不阻塞
func (c *Client) Send(msg *protocol.Message) {
	data, err := codec.Encode(msg)
	if err != nil {
		logger.Error("消息编码错误: %v", err)
		return
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return
	}

	select {
	case c.send <- data:
	default:
		// 发送缓冲区已满，关闭连接
		logger.Warn("连接 %s 发送缓冲区已满", c.id)
		go c.Close()
	}
}

// handleDisconnect 处理断开连接
func (c *Client) handleDisconnect() {
	c.server.relay.Disconnect(c)
	c.server.messageLimiter.Forget(c.id)
	c.server.unregisterClient(c)
	c.Close()
}

// Close 关闭客户端连接
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}
