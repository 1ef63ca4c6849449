package codec

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/paint-n-pass/internal/game/state"
	"github.com/palemoky/paint-n-pass/internal/protocol"
)

func TestMessagePool_GetPut(t *testing.T) {
	t.Parallel()

	msg := GetMessage()
	assert.NotNil(t, msg)

	msg.Type = "test"
	msg.Payload = []byte("data")
	PutMessage(msg)

	// Get again - should be reset
	msg2 := GetMessage()
	assert.NotNil(t, msg2)
	assert.Empty(t, msg2.Type)
	assert.Nil(t, msg2.Payload)
}

func TestMessagePool_PutNil(t *testing.T) {
	t.Parallel()

	assert.NotPanics(t, func() {
		PutMessage(nil)
	})
}

func TestBufferPool_GetPut(t *testing.T) {
	t.Parallel()

	buf := GetBuffer()
	assert.NotNil(t, buf)

	buf.WriteString("test data")
	assert.Equal(t, 9, buf.Len())
	PutBuffer(buf)

	buf2 := GetBuffer()
	assert.NotNil(t, buf2)
	assert.Equal(t, 0, buf2.Len())
}

func TestBufferPool_PutNil(t *testing.T) {
	t.Parallel()

	assert.NotPanics(t, func() {
		PutBuffer(nil)
	})
}

func TestPools_Concurrency(t *testing.T) {
	t.Parallel()

	var wg sync.WaitGroup
	for range 100 {
		wg.Go(func() {
			msg := GetMessage()
			msg.Type = "concurrent"
			msg.Payload = []byte("test")
			PutMessage(msg)

			buf := GetBuffer()
			buf.WriteString("concurrent test")
			PutBuffer(buf)
		})
	}
	wg.Wait()
}

func TestEncodeDecode(t *testing.T) {
	t.Parallel()

	s := state.New(800, 600, "ABC123")
	original := protocol.MustNewMessage(protocol.MsgGameUpdated, protocol.GameUpdatedPayload{GameState: s})

	data, err := Encode(original)
	require.NoError(t, err)
	assert.NotEqual(t, byte('\n'), data[len(data)-1])

	plain, err := original.Encode()
	require.NoError(t, err)
	assert.JSONEq(t, string(plain), string(data))

	decoded, err := Decode(data)
	require.NoError(t, err)
	defer PutMessage(decoded)

	assert.Equal(t, protocol.MsgGameUpdated, decoded.Type)
	payload, err := protocol.ParsePayload[protocol.GameUpdatedPayload](decoded)
	require.NoError(t, err)
	assert.Equal(t, s, payload.GameState)
}

func TestDecode_Invalid(t *testing.T) {
	t.Parallel()

	msg, err := Decode([]byte(`{"type":`))
	assert.Error(t, err)
	assert.Nil(t, msg)
}

func BenchmarkEncode(b *testing.B) {
	s := state.New(800, 600, "ABC123")
	for i := range 200 {
		s = state.Apply(s, state.AddStroke{
			Path:  []state.Point{{X: float64(i), Y: 0}, {X: float64(i), Y: 100}},
			Color: "#000000",
			Width: 3,
		})
	}
	msg := protocol.MustNewMessage(protocol.MsgGameUpdated, protocol.GameUpdatedPayload{GameState: s})

	b.ResetTimer()
	for b.Loop() {
		_, _ = Encode(msg)
	}
}
