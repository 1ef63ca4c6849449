// Package ui is the terminal drawing surface: a character-grid canvas driven
// by the keyboard, feeding strokes and ink into a session.Controller.
package ui

import (
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/palemoky/paint-n-pass/internal/game/ink"
	"github.com/palemoky/paint-n-pass/internal/game/state"
	"github.com/palemoky/paint-n-pass/internal/session"
	"github.com/palemoky/paint-n-pass/internal/sound"
)

const (
	defaultCols = 64
	defaultRows = 18
	toastTTL    = 3 * time.Second
)

// Sounder 播放提示音，sound.SoundManager 实现了它
type Sounder interface {
	Play(name string)
}

// --- Tea Messages ---

type eventMsg session.Event

type eventsClosedMsg struct{}

type clearToastMsg struct{ seq int }

// Model 终端绘图面
type Model struct {
	ctrl  *session.Controller
	sound Sounder

	keys keyMap
	help help.Model
	ink  progress.Model
	grid grid

	cursorCol int
	cursorRow int
	penDown   bool
	path      []state.Point // 正在画的一笔，抬笔时提交
	pending   float64       // 这一笔已用的墨水，抬笔时一次上报

	toast      string
	toastError bool
	toastSeq   int

	width  int
	height int
}

// New 创建界面模型，sounder 可以为 nil
func New(ctrl *session.Controller, sounder Sounder) *Model {
	s := ctrl.State()
	w, h := 800.0, 600.0
	if s != nil {
		w, h = s.CanvasWidth, s.CanvasHeight
	}
	return &Model{
		ctrl:      ctrl,
		sound:     sounder,
		keys:      keys,
		help:      help.New(),
		ink:       progress.New(progress.WithDefaultGradient(), progress.WithWidth(30)),
		grid:      newGrid(defaultCols, defaultRows, w, h),
		cursorCol: defaultCols / 2,
		cursorRow: defaultRows / 2,
	}
}

// Run 运行界面直到退出
func Run(ctrl *session.Controller, sounder Sounder) error {
	_, err := tea.NewProgram(New(ctrl, sounder), tea.WithAltScreen()).Run()
	return err
}

func (m *Model) Init() tea.Cmd {
	return m.listenForEvents()
}

func (m *Model) listenForEvents() tea.Cmd {
	events := m.ctrl.Events()
	return func() tea.Msg {
		e, ok := <-events
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg(e)
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case eventMsg:
		cmd := m.handleEvent(session.Event(msg))
		return m, tea.Batch(cmd, m.listenForEvents())

	case eventsClosedMsg:
		return m, nil

	case clearToastMsg:
		if msg.seq == m.toastSeq {
			m.toast = ""
		}
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	cols := min(max(width-8, 16), 120)
	rows := min(max(height-12, 6), 40)

	s := m.ctrl.State()
	if s != nil {
		m.grid = newGrid(cols, rows, s.CanvasWidth, s.CanvasHeight)
	}
	m.cursorCol = min(m.cursorCol, cols-1)
	m.cursorRow = min(m.cursorRow, rows-1)
	m.ink.Width = min(max(width/3, 10), 40)
	m.help.Width = width
}

func (m *Model) handleEvent(e session.Event) tea.Cmd {
	switch e.Kind {
	case session.EventTurnChanged:
		// 回合已切换，未提交的一笔作废
		m.penDown = false
		m.path, m.pending = nil, 0
		if m.ctrl.CanDraw() {
			m.play(sound.Turn)
		}
		return m.showToast(e.Message, false)

	case session.EventPlayerJoined:
		m.play(sound.Joined)
		return m.showToast(e.Message, false)

	case session.EventConnectionError:
		m.play(sound.Alert)
		return m.showToast(e.Message, true)

	case session.EventReconnecting, session.EventReconnected:
		return m.showToast(e.Message, false)
	}
	return nil
}

func (m *Model) showToast(text string, isError bool) tea.Cmd {
	m.toast = text
	m.toastError = isError
	m.toastSeq++
	seq := m.toastSeq
	return tea.Tick(toastTTL, func(time.Time) tea.Msg {
		return clearToastMsg{seq: seq}
	})
}

func (m *Model) play(name string) {
	if m.sound != nil {
		m.sound.Play(name)
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Up):
		m.move(0, -1)
	case key.Matches(msg, m.keys.Down):
		m.move(0, 1)
	case key.Matches(msg, m.keys.Left):
		m.move(-1, 0)
	case key.Matches(msg, m.keys.Right):
		m.move(1, 0)
	case key.Matches(msg, m.keys.Pen):
		m.togglePen()
	case key.Matches(msg, m.keys.Undo):
		if !m.penDown {
			m.ctrl.Undo()
		}
	case key.Matches(msg, m.keys.Redo):
		m.ctrl.Redo()
	case key.Matches(msg, m.keys.EndTurn):
		m.liftPen()
		m.ctrl.EndTurn()
	case key.Matches(msg, m.keys.Color):
		m.cycleBrush(true)
	case key.Matches(msg, m.keys.Width):
		m.cycleBrush(false)
	}
	return nil
}

func (m *Model) togglePen() {
	if m.penDown {
		m.liftPen()
		return
	}
	if !m.ctrl.CanDraw() {
		return
	}
	m.penDown = true
	m.path = []state.Point{m.grid.point(m.cursorCol, m.cursorRow)}
	m.pending = 0
}

// liftPen 抬笔并提交当前笔画
func (m *Model) liftPen() {
	if !m.penDown {
		return
	}
	m.penDown = false
	path, spent := m.path, m.pending
	m.path, m.pending = nil, 0
	if len(path) >= 2 {
		m.ctrl.ConsumeInk(spent)
		m.ctrl.CompleteStroke(path)
	}
}

// move 移动光标；落笔状态下延伸笔画，墨水不够时自动抬笔。
// 墨水在本地累计，抬笔时整笔上报一次。
func (m *Model) move(dc, dr int) {
	col := min(max(m.cursorCol+dc, 0), m.grid.cols-1)
	row := min(max(m.cursorRow+dr, 0), m.grid.rows-1)
	if col == m.cursorCol && row == m.cursorRow {
		return
	}

	if m.penDown {
		active := m.ctrl.State().ActiveTurn()
		if active == nil || !m.ctrl.CanDraw() {
			m.penDown = false
			m.path, m.pending = nil, 0
		} else {
			last := m.path[len(m.path)-1]
			next := m.grid.point(col, row)
			width := float64(active.BrushSettings.Width)
			if !ink.SegmentAllowed(active.InkUsed+m.pending, active.InkLimit, last, next, width) {
				m.liftPen()
				m.drainInk(width)
				return
			}
			m.path = append(m.path, next)
			m.pending += ink.Cost([]state.Point{last, next}, width)
			// 剩余墨水走不了下一步时立即提交，赶在自动结束回合之前
			if active.InkLimit-(active.InkUsed+m.pending) < m.minStep(width) {
				m.liftPen()
				m.drainInk(width)
			}
		}
	}
	m.cursorCol, m.cursorRow = col, row
}

// minStep 最短一步（横向或纵向移动一格）的墨水消耗
func (m *Model) minStep(width float64) float64 {
	return min(m.grid.cellW(), m.grid.cellH()) * width
}

// drainInk 剩余墨水连最短的一步都画不了时全部用掉，让回合自动结束
func (m *Model) drainInk(width float64) {
	active := m.ctrl.State().ActiveTurn()
	if active == nil {
		return
	}
	if remaining := active.InkRemaining(); remaining > 0 && remaining < m.minStep(width) {
		m.ctrl.ConsumeInk(remaining)
	}
}

// cycleBrush 切换到调色板中的下一个颜色或下一个粗细
func (m *Model) cycleBrush(color bool) {
	if m.penDown {
		return
	}
	active := m.ctrl.State().ActiveTurn()
	if active == nil {
		return
	}
	b := active.BrushSettings
	if color {
		i := slices.Index(state.Palette, b.Color)
		b.Color = state.Palette[(i+1)%len(state.Palette)]
	} else {
		i := slices.Index(state.BrushWidths, b.Width)
		b.Width = state.BrushWidths[(i+1)%len(state.BrushWidths)]
	}
	m.ctrl.SetBrush(b)
}
