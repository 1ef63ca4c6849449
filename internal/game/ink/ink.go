// Package ink computes path geometry and the ink budget of a turn.
//
// Ink is consumed proportionally to distance travelled times brush width, and a
// turn's budget is a fixed share of the canvas area.
package ink

import "math"

// LimitRatio 每回合墨水额度占画布面积的比例
const LimitRatio = 0.1

// Point 画布上的像素坐标
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Distance 两点间的欧氏距离
func Distance(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// PathLength 相邻点距离之和，不足两个点时为 0
func PathLength(path []Point) float64 {
	if len(path) < 2 {
		return 0
	}
	total := 0.0
	for i := 1; i < len(path); i++ {
		total += Distance(path[i-1], path[i])
	}
	return total
}

// Cost 以 width 粗细画完 path 消耗的墨水
func Cost(path []Point, width float64) float64 {
	return PathLength(path) * width
}

// Limit w x h 画布每回合的墨水额度
func Limit(w, h float64) float64 {
	return LimitRatio * w * h
}

// SegmentAllowed 从 a 延伸到 b 后是否仍在额度内。
// 状态机本身不拒绝墨水上报，由绘制面据此停止取点。
func SegmentAllowed(used, limit float64, a, b Point, width float64) bool {
	return used+Cost([]Point{a, b}, width) <= limit
}
