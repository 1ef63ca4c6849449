// Package session drives one participant's game: it feeds local input
// through the reducer, publishes the result to the relay and folds remote
// snapshots back in.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/palemoky/paint-n-pass/internal/game/state"
	"github.com/palemoky/paint-n-pass/internal/logger"
)

// DefaultAutoEndDelay 墨水耗尽到自动结束回合之间的等待
const DefaultAutoEndDelay = 300 * time.Millisecond

// ErrClosed 会话已关闭
var ErrClosed = errors.New("session closed")

// Transport 向中继发送消息，network/client.Client 实现了它
type Transport interface {
	JoinGame(gameID string, isPlayer1 bool) error
	UpdateGame(gameID string, s *state.GameState) error
}

// Options 会话参数
type Options struct {
	GameID string
	Width  float64
	Height float64

	// Player 多人模式下本端的座位，单机模式忽略
	Player state.Player

	// Transport 为 nil 或 GameID 为 local 时是单机模式
	Transport Transport

	AutoEndDelay time.Duration
}

// Controller 单个参与者的会话
type Controller struct {
	gameID      string
	width       float64
	height      float64
	player      state.Player
	multiplayer bool
	transport   Transport
	delay       time.Duration
	closeFn     func()

	mu      sync.Mutex
	state   *state.GameState
	events  chan Event
	closed  bool
	autoEnd *time.Timer
	gen     uint64 // 每次重新调度递增，旧的定时器据此失效
}

// New 创建会话，调用 Start 后开始
func New(opts Options) *Controller {
	c := &Controller{
		gameID:    opts.GameID,
		width:     opts.Width,
		height:    opts.Height,
		player:    opts.Player,
		transport: opts.Transport,
		delay:     opts.AutoEndDelay,
		events:    make(chan Event, 64),
	}
	if c.gameID == "" {
		c.gameID = state.LocalGameID
	}
	c.multiplayer = c.transport != nil && c.gameID != state.LocalGameID
	if !c.player.Valid() {
		c.player = state.Player1
	}
	if c.delay <= 0 {
		c.delay = DefaultAutoEndDelay
	}
	return c
}

// Start 创建新对局；多人模式下随后加入房间，服务端若有快照会通过 game_updated 覆盖本地状态
func (c *Controller) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	c.applyLocked(state.StartGame{Width: c.width, Height: c.height, GameID: c.gameID}, false)

	if !c.multiplayer {
		return nil
	}
	if err := c.transport.JoinGame(c.gameID, c.player == state.Player1); err != nil {
		c.emitLocked(Event{Kind: EventConnectionError, Message: connectionErrorText})
		return fmt.Errorf("join game %s: %w", c.gameID, err)
	}
	logger.Info("加入对局 %s，座位 %d", c.gameID, c.player)
	return nil
}

// CompleteStroke 提交一笔，使用当前回合的画笔。少于两个点或当前不能落笔时返回 false
func (c *Controller) CompleteStroke(path []state.Point) bool {
	if len(path) < 2 {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	active := c.state.ActiveTurn()
	if c.closed || active == nil || !c.canDrawLocked() {
		return false
	}
	c.applyLocked(state.AddStroke{
		Path:  path,
		Color: active.BrushSettings.Color,
		Width: active.BrushSettings.Width,
	}, true)
	return true
}

// ConsumeInk 记录绘制面上报的墨水消耗
func (c *Controller) ConsumeInk(amount float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || !c.canDrawLocked() {
		return
	}
	c.applyLocked(state.UpdateInk{Amount: amount}, true)
}

// SetBrush 更换当前回合画笔，宽度被限制在允许范围内
func (c *Controller) SetBrush(b state.BrushSettings) {
	b.Width = min(max(b.Width, state.MinBrushWidth), state.MaxBrushWidth)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || !c.canDrawLocked() {
		return
	}
	c.applyLocked(state.SetBrush{Brush: b}, true)
}

// Undo 撤销当前回合最后一笔
func (c *Controller) Undo() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || !c.canUndoLocked() {
		return
	}
	c.applyLocked(state.Undo{}, true)
}

// Redo 不做任何事，没有重做栈
func (c *Controller) Redo() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.applyLocked(state.Redo{}, true)
}

// EndTurn 结束当前回合
func (c *Controller) EndTurn() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || !c.canDrawLocked() {
		return
	}
	c.applyLocked(state.EndTurn{}, true)
}

// ApplyRemote 用远端快照整体替换本地状态，不会再次发布
func (c *Controller) ApplyRemote(s *state.GameState) {
	if s == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.applyLocked(state.SetGameState{State: s}, false)
}

// ReportConnectionError 把连接问题作为通知抛给界面，本地状态保持不变
func (c *Controller) ReportConnectionError(err error) {
	if err != nil {
		logger.Warn("连接错误: %v", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.emitLocked(Event{Kind: EventConnectionError, Message: connectionErrorText})
	}
}

// CanDraw 单机模式总是允许，多人模式仅在轮到本端座位时允许
func (c *Controller) CanDraw() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canDrawLocked()
}

// CanUndo 当前回合有笔画且允许落笔
func (c *Controller) CanUndo() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canUndoLocked()
}

// State 当前状态快照，调用方只读
func (c *Controller) State() *state.GameState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Events 通知流，Close 后关闭
func (c *Controller) Events() <-chan Event {
	return c.events
}

// GameID 对局 ID
func (c *Controller) GameID() string { return c.gameID }

// Player 本端座位
func (c *Controller) Player() state.Player { return c.player }

// Multiplayer 是否多人模式
func (c *Controller) Multiplayer() bool { return c.multiplayer }

// Close 取消自动结束定时器，关闭事件流与底层连接
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.cancelAutoEndLocked()
	close(c.events)
	closeFn := c.closeFn
	c.mu.Unlock()

	if closeFn != nil {
		closeFn()
	}
}

func (c *Controller) canDrawLocked() bool {
	if c.state == nil {
		return false
	}
	if !c.multiplayer {
		return true
	}
	return c.state.CurrentPlayer == c.player
}

func (c *Controller) canUndoLocked() bool {
	active := c.state.ActiveTurn()
	return active != nil && len(active.Strokes) > 0 && c.canDrawLocked()
}

// applyLocked 执行一个动作。状态未变化时什么都不做；
// publish 为 true 且处于多人模式时把新状态推给中继。
func (c *Controller) applyLocked(a state.Action, publish bool) {
	prev := c.state
	next := state.Apply(prev, a)
	if next == prev {
		return
	}
	c.state = next
	logger.Debug("%s -> 玩家 %d 回合 %d", state.ActionName(a), next.CurrentPlayer, next.CurrentTurn)

	c.emitLocked(Event{Kind: EventStateChanged, State: next})
	if prev == nil || prev.CurrentPlayer != next.CurrentPlayer || prev.CurrentTurn != next.CurrentTurn {
		c.emitLocked(Event{
			Kind:    EventTurnChanged,
			Player:  next.CurrentPlayer,
			Message: fmt.Sprintf("Player %d's turn (Turn %d)", next.CurrentPlayer, next.CurrentTurn),
			State:   next,
		})
	}

	c.scheduleAutoEndLocked()

	if publish && c.multiplayer {
		if err := c.transport.UpdateGame(c.gameID, next); err != nil {
			logger.Warn("推送状态失败: %v", err)
			c.emitLocked(Event{Kind: EventConnectionError, Message: connectionErrorText})
		}
	}
}

func (c *Controller) emitLocked(e Event) {
	select {
	case c.events <- e:
	default:
		logger.Debug("事件队列已满，丢弃 %s", e.Kind)
	}
}
