package session

import (
	"fmt"

	"github.com/palemoky/paint-n-pass/internal/game/state"
)

const connectionErrorText = "Connection error. Try refreshing."

// EventKind 通知类型
type EventKind int

const (
	EventStateChanged    EventKind = iota // 状态变化，界面需要重绘
	EventTurnChanged                      // 换人或回合数变化
	EventPlayerJoined                     // 对方加入房间
	EventConnectionError                  // 连接失败或断开
	EventReconnecting                     // 正在重连
	EventReconnected                      // 重连成功，等待追帧快照
)

func (k EventKind) String() string {
	switch k {
	case EventStateChanged:
		return "state_changed"
	case EventTurnChanged:
		return "turn_changed"
	case EventPlayerJoined:
		return "player_joined"
	case EventConnectionError:
		return "connection_error"
	case EventReconnecting:
		return "reconnecting"
	case EventReconnected:
		return "reconnected"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

// Event 会话通知
type Event struct {
	Kind    EventKind
	Message string
	Player  state.Player
	State   *state.GameState
}

func playerOf(isPlayer1 bool) state.Player {
	if isPlayer1 {
		return state.Player1
	}
	return state.Player2
}
