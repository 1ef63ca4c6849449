package state

import "math"

// Action Apply 的输入
type Action interface {
	actionName() string
}

// StartGame 丢弃现有状态，开始新对局
type StartGame struct {
	Width  float64
	Height float64
	GameID string
}

// SetBrush 替换当前回合的画笔
type SetBrush struct {
	Brush BrushSettings
}

// AddStroke 向当前回合追加一笔，少于两个点的路径须由调用方先过滤
type AddStroke struct {
	Path  []Point
	Color string
	Width int
}

// UpdateInk 累加绘制面上报的墨水
type UpdateInk struct {
	Amount float64
}

// Undo 撤销当前回合最后一笔
type Undo struct{}

// Redo 接受但不做任何事，没有重做栈
type Redo struct{}

// EndTurn 把画布交给另一位玩家
type EndTurn struct{}

// SetGameState 整体替换状态（远端更新）
type SetGameState struct {
	State *GameState
}

func (StartGame) actionName() string    { return "START_GAME" }
func (SetBrush) actionName() string     { return "SET_BRUSH" }
func (AddStroke) actionName() string    { return "ADD_STROKE" }
func (UpdateInk) actionName() string    { return "UPDATE_INK" }
func (Undo) actionName() string         { return "UNDO" }
func (Redo) actionName() string         { return "REDO" }
func (EndTurn) actionName() string      { return "END_TURN" }
func (SetGameState) actionName() string { return "SET_GAME_STATE" }

// ActionName 动作的大写名称，用于日志
func ActionName(a Action) string {
	if a == nil {
		return ""
	}
	return a.actionName()
}

// Apply 返回执行 a 之后的状态，不修改输入。
// 未改动的回合在新旧状态间共享，只读；前置条件不满足时原样返回 s。
func Apply(s *GameState, a Action) *GameState {
	switch a := a.(type) {
	case StartGame:
		return New(a.Width, a.Height, a.GameID)

	case SetGameState:
		return a.State

	case SetBrush:
		return withActiveTurn(s, func(t *Turn) {
			t.BrushSettings = a.Brush
		})

	case AddStroke:
		return withActiveTurn(s, func(t *Turn) {
			stroke := Stroke{
				Path:       append([]Point(nil), a.Path...),
				Color:      a.Color,
				Width:      a.Width,
				Player:     s.CurrentPlayer,
				TurnNumber: s.CurrentTurn,
			}
			t.Strokes = append(append(make([]Stroke, 0, len(t.Strokes)+1), t.Strokes...), stroke)
		})

	case UpdateInk:
		if a.Amount < 0 || math.IsNaN(a.Amount) {
			return s
		}
		return withActiveTurn(s, func(t *Turn) {
			t.InkUsed += a.Amount
		})

	case Undo:
		active := s.ActiveTurn()
		if active == nil || len(active.Strokes) == 0 {
			return s
		}
		return withActiveTurn(s, func(t *Turn) {
			last := t.Strokes[len(t.Strokes)-1]
			t.Strokes = append([]Stroke{}, t.Strokes[:len(t.Strokes)-1]...)
			t.InkUsed = math.Max(0, t.InkUsed-last.InkCost())
		})

	case Redo:
		return s

	case EndTurn:
		return endTurn(s)
	}
	return s
}

func endTurn(s *GameState) *GameState {
	if s == nil {
		return s
	}
	next := s.CurrentPlayer.Other()
	nextTurn := s.CurrentTurn + 1

	brush := DefaultBrush(next)
	for i := len(s.Turns) - 1; i >= 0; i-- {
		if s.Turns[i].Player == next {
			brush = s.Turns[i].BrushSettings
			break
		}
	}

	out := *s
	out.CurrentPlayer = next
	out.CurrentTurn = nextTurn
	out.Turns = make([]Turn, len(s.Turns), len(s.Turns)+1)
	copy(out.Turns, s.Turns)
	out.Turns = append(out.Turns, Turn{
		Player:        next,
		TurnNumber:    nextTurn,
		Strokes:       []Stroke{},
		InkLimit:      s.InkLimit,
		BrushSettings: brush,
	})
	return &out
}

// withActiveTurn 复制 s 和回合列表，只让 mutate 修改当前回合的副本，已封存的回合共享
func withActiveTurn(s *GameState, mutate func(t *Turn)) *GameState {
	if s.ActiveTurn() == nil {
		return s
	}
	out := *s
	out.Turns = make([]Turn, len(s.Turns))
	copy(out.Turns, s.Turns)
	mutate(&out.Turns[out.CurrentTurn-1])
	return &out
}
