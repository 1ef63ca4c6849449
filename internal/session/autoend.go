package session

import (
	"time"

	"github.com/palemoky/paint-n-pass/internal/game/state"
)

// scheduleAutoEndLocked 每次状态变化后调用：先作废已有定时器，
// 若活动回合墨水耗尽且轮到本端，再安排一次 END_TURN。
func (c *Controller) scheduleAutoEndLocked() {
	c.cancelAutoEndLocked()

	active := c.state.ActiveTurn()
	if active == nil || !inkSpent(active) || !c.canDrawLocked() {
		return
	}

	gen := c.gen
	turn := c.state.CurrentTurn
	c.autoEnd = time.AfterFunc(c.delay, func() {
		c.fireAutoEnd(gen, turn)
	})
}

func (c *Controller) cancelAutoEndLocked() {
	c.gen++
	if c.autoEnd != nil {
		c.autoEnd.Stop()
		c.autoEnd = nil
	}
}

func (c *Controller) fireAutoEnd(gen uint64, turn int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// 定时器已被新的状态变化取代
	if c.closed || gen != c.gen || c.state.CurrentTurn != turn {
		return
	}
	c.autoEnd = nil

	active := c.state.ActiveTurn()
	if active == nil || !inkSpent(active) || !c.canDrawLocked() {
		return
	}
	c.applyLocked(state.EndTurn{}, true)
}

// inkSpent 墨水用尽。额度为 0 时新回合本身不算用尽，要等落下第一笔
func inkSpent(t *state.Turn) bool {
	if !t.Exhausted() {
		return false
	}
	return t.InkUsed > 0 || len(t.Strokes) > 0
}
