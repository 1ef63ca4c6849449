//go:build !production

package testutil

import (
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/palemoky/paint-n-pass/internal/protocol"
)

// MockConn 实现 relay.Conn 的 mock
type MockConn struct {
	mock.Mock
}

func (m *MockConn) ID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockConn) Send(msg *protocol.Message) {
	m.Called(msg)
}

// SimpleConn 记录收到的消息，不使用 testify（可并发使用）
type SimpleConn struct {
	ConnID string

	mu       sync.Mutex
	messages []*protocol.Message
}

func NewSimpleConn(id string) *SimpleConn {
	return &SimpleConn{ConnID: id}
}

func (c *SimpleConn) ID() string { return c.ConnID }

func (c *SimpleConn) Send(msg *protocol.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, msg)
}

// Messages 返回收到的全部消息副本
func (c *SimpleConn) Messages() []*protocol.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*protocol.Message(nil), c.messages...)
}

// OfType 返回指定类型的消息
func (c *SimpleConn) OfType(t protocol.MessageType) []*protocol.Message {
	var out []*protocol.Message
	for _, m := range c.Messages() {
		if m.Type == t {
			out = append(out, m)
		}
	}
	return out
}

// Reset 清空记录
func (c *SimpleConn) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = nil
}
