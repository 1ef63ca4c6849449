package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/palemoky/paint-n-pass/internal/game/state"
)

func (m *Model) View() string {
	s := m.ctrl.State()
	if s == nil {
		return docStyle.Render("Loading game...")
	}
	active := s.ActiveTurn()

	var sb strings.Builder
	sb.WriteString(m.headerView(s))
	sb.WriteString("\n")
	sb.WriteString(m.toastView(s))
	sb.WriteString("\n")

	brush := state.DefaultBrush(s.CurrentPlayer)
	if active != nil {
		brush = active.BrushSettings
	}
	cells := m.grid.raster(s.AllStrokes(), m.path, brush)
	sb.WriteString(m.grid.render(cells, m.cursorCol, m.cursorRow, m.ctrl.CanDraw(), m.penDown))
	sb.WriteString("\n")

	if active != nil {
		sb.WriteString(m.statusView(active))
		sb.WriteString("\n")
	}
	sb.WriteString(m.help.View(m.keys))

	return docStyle.Render(sb.String())
}

func (m *Model) headerView(s *state.GameState) string {
	title := titleStyle("🎨 Paint-n-Pass")
	var info string
	if m.ctrl.Multiplayer() {
		info = fmt.Sprintf("Game ID: %s  %s", m.ctrl.GameID(), playerStyle(m.ctrl.Player()).Render(fmt.Sprintf("Player %d", m.ctrl.Player())))
	} else {
		info = playerStyle(s.CurrentPlayer).Render(fmt.Sprintf("Player %d's Turn", s.CurrentPlayer))
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, title, "   ", info)
}

func (m *Model) toastView(s *state.GameState) string {
	switch {
	case m.toast != "" && m.toastError:
		return errorStyle.Render("⚠️ " + m.toast)
	case m.toast != "":
		return toastStyle.Inherit(playerStyle(s.CurrentPlayer)).Render(m.toast)
	case !m.ctrl.CanDraw():
		return dimStyle.Render(fmt.Sprintf("等待 Player %d 作画...", s.CurrentPlayer))
	default:
		return dimStyle.Render(fmt.Sprintf("Turn %d", s.CurrentTurn))
	}
}

func (m *Model) statusView(t *state.Turn) string {
	used := t.InkUsed + m.pending
	ratio := 1.0
	if t.InkLimit > 0 {
		ratio = min(used/t.InkLimit, 1)
	}
	inkText := fmt.Sprintf("墨水 %.0f / %.0f", used, t.InkLimit)

	swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(t.BrushSettings.Color)).Render(glyph(t.BrushSettings.Width))
	brushText := fmt.Sprintf("画笔 %s %s 粗细 %d", swatch, t.BrushSettings.Color, t.BrushSettings.Width)

	strokesText := dimStyle.Render(fmt.Sprintf("本回合 %d 笔", len(t.Strokes)))

	return boxStyle.Render(lipgloss.JoinHorizontal(lipgloss.Center,
		m.ink.ViewAs(ratio), "  ", inkText, "   ", brushText, "   ", strokesText))
}
