package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Left    key.Binding
	Right   key.Binding
	Pen     key.Binding
	Undo    key.Binding
	Redo    key.Binding
	EndTurn key.Binding
	Color   key.Binding
	Width   key.Binding
	Help    key.Binding
	Quit    key.Binding
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Pen, k.Undo, k.EndTurn, k.Color, k.Width, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.Pen, k.Undo, k.Redo, k.EndTurn},
		{k.Color, k.Width, k.Help, k.Quit},
	}
}

var keys = keyMap{
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "上移")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "下移")),
	Left:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "左移")),
	Right:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "右移")),
	Pen:     key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "落笔/抬笔")),
	Undo:    key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "撤销")),
	Redo:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "重做")),
	EndTurn: key.NewBinding(key.WithKeys("e", "enter"), key.WithHelp("e", "结束回合")),
	Color:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "换颜色")),
	Width:   key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "换粗细")),
	Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "帮助")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "退出")),
}
