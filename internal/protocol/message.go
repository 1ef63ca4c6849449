// Package protocol 定义中继通道上的消息格式
package protocol

import "encoding/json"

// Message 基础消息结构
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MessageType 消息类型
type MessageType string

// 客户端 → 服务端 消息类型
const (
	MsgJoinGame   MessageType = "join_game"   // 加入对局房间
	MsgUpdateGame MessageType = "update_game" // 推送完整状态
	MsgPing       MessageType = "ping"        // 心跳 ping
)

// 服务端 → 客户端 消息类型
const (
	MsgPlayerJoined MessageType = "player_joined" // 其他玩家加入
	MsgGameUpdated  MessageType = "game_updated"  // 状态更新（转发或追帧快照）
	MsgPong         MessageType = "pong"          // 心跳 pong
	MsgError        MessageType = "error"         // 错误消息
)
