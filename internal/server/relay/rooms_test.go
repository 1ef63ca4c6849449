package relay

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/palemoky/paint-n-pass/internal/testutil"
)

func TestRooms_JoinReturnsExistingMembers(t *testing.T) {
	t.Parallel()

	r := NewRooms()
	a, b := testutil.NewSimpleConn("a"), testutil.NewSimpleConn("b")

	assert.Empty(t, r.Join("ABC123", a))
	others := r.Join("ABC123", b)
	assert.Len(t, others, 1)
	assert.Equal(t, "a", others[0].ID())

	again := r.Join("ABC123", a)
	assert.Len(t, again, 1, "rejoin does not list itself")
	assert.Equal(t, "b", again[0].ID())
	assert.Equal(t, 2, r.Size("ABC123"))
}

func TestRooms_Others(t *testing.T) {
	t.Parallel()

	r := NewRooms()
	a, b, c := testutil.NewSimpleConn("a"), testutil.NewSimpleConn("b"), testutil.NewSimpleConn("c")
	r.Join("G1", a)
	r.Join("G1", b)
	r.Join("G2", c)

	others := r.Others("G1", "a")
	assert.Len(t, others, 1)
	assert.Equal(t, "b", others[0].ID())
	assert.Empty(t, r.Others("NOPE", "a"))
	assert.Len(t, r.Others("G1", "outsider"), 2)
}

func TestRooms_LeaveGarbageCollects(t *testing.T) {
	t.Parallel()

	r := NewRooms()
	a, b := testutil.NewSimpleConn("a"), testutil.NewSimpleConn("b")
	r.Join("G1", a)
	r.Join("G2", a)
	r.Join("G1", b)
	assert.Equal(t, 2, r.Count())

	assert.Equal(t, []string{"G2"}, r.Leave("a"))
	assert.True(t, r.Exists("G1"))
	assert.False(t, r.Exists("G2"))
	assert.Equal(t, 1, r.Size("G1"))

	assert.Equal(t, []string{"G1"}, r.Leave("b"))
	assert.Zero(t, r.Count())
	assert.Empty(t, r.Leave("b"), "leaving twice is a no-op")
}

func TestRooms_Concurrent(t *testing.T) {
	t.Parallel()

	r := NewRooms()
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Go(func() {
			c := testutil.NewSimpleConn(fmt.Sprintf("c%d", i))
			gameID := fmt.Sprintf("G%d", i%5)
			r.Join(gameID, c)
			_ = r.Others(gameID, c.ID())
			r.Leave(c.ID())
		})
	}
	wg.Wait()
	assert.Zero(t, r.Count())
}
