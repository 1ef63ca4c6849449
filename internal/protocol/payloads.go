package protocol

import "github.com/palemoky/paint-n-pass/internal/game/state"

// --- 客户端请求 Payloads ---

// JoinGamePayload 加入房间请求
type JoinGamePayload struct {
	GameID    string `json:"gameId"`
	IsPlayer1 bool   `json:"isPlayer1"`
}

// UpdateGamePayload 状态推送
type UpdateGamePayload struct {
	GameID    string           `json:"gameId"`
	GameState *state.GameState `json:"gameState"`
}

// PingPayload 心跳请求
type PingPayload struct {
	Timestamp int64 `json:"timestamp"` // 客户端时间戳（毫秒）
}

// --- 服务端响应 Payloads ---

// PlayerJoinedPayload 其他玩家加入通知
type PlayerJoinedPayload struct {
	PlayerID  string `json:"playerId"`
	IsPlayer1 bool   `json:"isPlayer1"`
}

// GameUpdatedPayload 状态更新
type GameUpdatedPayload struct {
	GameState *state.GameState `json:"gameState"`
}

// PongPayload 心跳响应
type PongPayload struct {
	ClientTimestamp int64 `json:"clientTimestamp"`
	ServerTimestamp int64 `json:"serverTimestamp"`
}

// ErrorPayload 错误响应
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
