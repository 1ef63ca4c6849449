package ui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/palemoky/paint-n-pass/internal/game/state"
)

// grid 把像素坐标映射到终端字符格。每格取中心点作为笔画坐标。
type grid struct {
	cols, rows    int
	width, height float64 // 画布像素尺寸
}

func newGrid(cols, rows int, width, height float64) grid {
	return grid{cols: max(cols, 1), rows: max(rows, 1), width: width, height: height}
}

func (g grid) cellW() float64 { return g.width / float64(g.cols) }
func (g grid) cellH() float64 { return g.height / float64(g.rows) }

// point 格子中心的像素坐标
func (g grid) point(col, row int) state.Point {
	return state.Point{
		X: (float64(col) + 0.5) * g.cellW(),
		Y: (float64(row) + 0.5) * g.cellH(),
	}
}

// cell 像素坐标所在的格子，越界时钳制到边缘
func (g grid) cell(p state.Point) (col, row int) {
	if g.width <= 0 || g.height <= 0 {
		return 0, 0
	}
	col = int(math.Floor(p.X / g.cellW()))
	row = int(math.Floor(p.Y / g.cellH()))
	return min(max(col, 0), g.cols-1), min(max(row, 0), g.rows-1)
}

type paint struct {
	color string
	width int
}

// raster 按渲染顺序把笔画画到格子上，后画的覆盖先画的
func (g grid) raster(strokes []state.Stroke, pending []state.Point, brush state.BrushSettings) [][]*paint {
	cells := make([][]*paint, g.rows)
	for r := range cells {
		cells[r] = make([]*paint, g.cols)
	}

	draw := func(path []state.Point, p *paint) {
		for i := 1; i < len(path); i++ {
			c0, r0 := g.cell(path[i-1])
			c1, r1 := g.cell(path[i])
			steps := max(abs(c1-c0), abs(r1-r0))
			for s := 0; s <= steps; s++ {
				t := 0.0
				if steps > 0 {
					t = float64(s) / float64(steps)
				}
				c := c0 + int(math.Round(t*float64(c1-c0)))
				r := r0 + int(math.Round(t*float64(r1-r0)))
				cells[r][c] = p
			}
		}
		if len(path) == 1 {
			c, r := g.cell(path[0])
			cells[r][c] = p
		}
	}

	for _, s := range strokes {
		draw(s.Path, &paint{color: s.Color, width: s.Width})
	}
	draw(pending, &paint{color: brush.Color, width: brush.Width})
	return cells
}

// glyph 粗细不同用不同字符
func glyph(width int) string {
	switch {
	case width <= 3:
		return "•"
	case width <= 8:
		return "●"
	default:
		return "█"
	}
}

// render 输出画布，光标所在格叠加光标图标
func (g grid) render(cells [][]*paint, cursorCol, cursorRow int, showCursor, penDown bool) string {
	var sb strings.Builder
	for r := range cells {
		for c, p := range cells[r] {
			if showCursor && c == cursorCol && r == cursorRow {
				icon := CursorIcon
				if penDown {
					icon = PenDownIcon
				}
				sb.WriteString(cursorStyle.Render(icon))
				continue
			}
			if p == nil {
				sb.WriteString(paperStyle.Render(" "))
				continue
			}
			sb.WriteString(lipgloss.NewStyle().
				Foreground(lipgloss.Color(p.color)).
				Background(lipgloss.Color("#FFFFFF")).
				Render(glyph(p.width)))
		}
		if r < len(cells)-1 {
			sb.WriteByte('\n')
		}
	}
	return canvasStyle.Render(sb.String())
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
