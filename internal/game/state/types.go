// Package state holds the turn-structured game model and the pure reducer
// that advances it.
package state

import (
	"encoding/json"

	"github.com/palemoky/paint-n-pass/internal/game/ink"
)

// Player 两个座位之一
type Player int

const (
	Player1 Player = 1
	Player2 Player = 2
)

// Other 对面的座位
func (p Player) Other() Player {
	if p == Player1 {
		return Player2
	}
	return Player1
}

// Valid 是否为合法座位
func (p Player) Valid() bool {
	return p == Player1 || p == Player2
}

// Point 画布坐标，与 ink 包共用
type Point = ink.Point

// 画笔粗细范围
const (
	MinBrushWidth = 1
	MaxBrushWidth = 20
)

// Palette 调色板，前两项是两位玩家的默认颜色
var Palette = []string{
	"#cf3f3f",
	"#6539a0",
	"#000000",
	"#333333",
	"#2D9CDB",
	"#27AE60",
	"#F2C94C",
	"#F2994A",
}

// BrushWidths 可选粗细
var BrushWidths = []int{1, 3, 5, 8, 12, 16, 20}

// BrushSettings 新笔画使用的颜色和粗细
type BrushSettings struct {
	Color string `json:"color"`
	Width int    `json:"width"`
}

// DefaultBrush 玩家的初始画笔
func DefaultBrush(p Player) BrushSettings {
	if p == Player2 {
		return BrushSettings{Color: Palette[1], Width: 5}
	}
	return BrushSettings{Color: Palette[0], Width: 5}
}

// Stroke 已提交的一笔，创建后不再修改
type Stroke struct {
	Path       []Point `json:"path"`
	Color      string  `json:"color"`
	Width      int     `json:"width"`
	Player     Player  `json:"player"`
	TurnNumber int     `json:"turnNumber"`
}

// InkCost 这一笔消耗的墨水
func (s Stroke) InkCost() float64 {
	return ink.Cost(s.Path, float64(s.Width))
}

// Turn 一位玩家连续作画的一个回合
type Turn struct {
	Player        Player        `json:"player"`
	TurnNumber    int           `json:"turnNumber"`
	Strokes       []Stroke      `json:"strokes"`
	InkUsed       float64       `json:"inkUsed"`
	InkLimit      float64       `json:"inkLimit"`
	BrushSettings BrushSettings `json:"brushSettings"`
}

// Exhausted 墨水是否已用完
func (t *Turn) Exhausted() bool {
	return t.InkUsed >= t.InkLimit
}

// InkRemaining 剩余墨水，不为负
func (t *Turn) InkRemaining() float64 {
	if t.InkUsed >= t.InkLimit {
		return 0
	}
	return t.InkLimit - t.InkUsed
}

// GameState 对局状态。Turns[CurrentTurn-1] 是唯一可变的回合，之前的都是历史
type GameState struct {
	CurrentPlayer Player  `json:"currentPlayer"`
	CurrentTurn   int     `json:"currentTurn"`
	Turns         []Turn  `json:"turns"`
	IsGameOver    bool    `json:"isGameOver"`
	CanvasWidth   float64 `json:"canvasWidth"`
	CanvasHeight  float64 `json:"canvasHeight"`
	InkLimit      float64 `json:"inkLimit"`
	GameID        string  `json:"gameId"`
}

// New 新对局，玩家 1 的空白第一回合
func New(width, height float64, gameID string) *GameState {
	limit := ink.Limit(width, height)
	return &GameState{
		CurrentPlayer: Player1,
		CurrentTurn:   1,
		Turns: []Turn{{
			Player:        Player1,
			TurnNumber:    1,
			Strokes:       []Stroke{},
			InkLimit:      limit,
			BrushSettings: DefaultBrush(Player1),
		}},
		CanvasWidth:  width,
		CanvasHeight: height,
		InkLimit:     limit,
		GameID:       gameID,
	}
}

// ActiveTurn 当前回合，状态不合法时返回 nil
func (s *GameState) ActiveTurn() *Turn {
	if s == nil || s.CurrentTurn < 1 || s.CurrentTurn > len(s.Turns) {
		return nil
	}
	return &s.Turns[s.CurrentTurn-1]
}

// AllStrokes 按回合顺序拼接所有笔画，即各客户端统一的绘制顺序
func (s *GameState) AllStrokes() []Stroke {
	if s == nil {
		return nil
	}
	n := 0
	for i := range s.Turns {
		n += len(s.Turns[i].Strokes)
	}
	out := make([]Stroke, 0, n)
	for i := range s.Turns {
		out = append(out, s.Turns[i].Strokes...)
	}
	return out
}

// Marshal 编码为传输和存储格式
func (s *GameState) Marshal() ([]byte, error) {
	return json.Marshal(s)
}

// Unmarshal 解析 Marshal 的输出
func Unmarshal(data []byte) (*GameState, error) {
	var s GameState
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
