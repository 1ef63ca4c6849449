package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/palemoky/paint-n-pass/internal/game/state"
)

const (
	CursorIcon  = "✚"
	PenDownIcon = "✎"
)

// Lipgloss Styles
var (
	docStyle    = lipgloss.NewStyle().Margin(1, 2)
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("228")).Bold(true).Render
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder())
	canvasStyle = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Background(lipgloss.Color("#FFFFFF"))
	paperStyle  = lipgloss.NewStyle().Background(lipgloss.Color("#FFFFFF"))
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("#FFFFFF")).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	toastStyle  = lipgloss.NewStyle().Padding(0, 1).Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// playerStyle 玩家标识色与默认画笔一致
func playerStyle(p state.Player) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color(state.DefaultBrush(p).Color)).
		Padding(0, 1).
		Bold(true)
}
