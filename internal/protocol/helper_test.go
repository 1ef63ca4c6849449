package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/paint-n-pass/internal/game/state"
)

func TestNewMessage(t *testing.T) {
	t.Parallel()

	msg, err := NewMessage(MsgJoinGame, JoinGamePayload{GameID: "ABC123", IsPlayer1: true})

	require.NoError(t, err)
	assert.Equal(t, MsgJoinGame, msg.Type)
	assert.JSONEq(t, `{"gameId":"ABC123","isPlayer1":true}`, string(msg.Payload))
}

func TestNewMessage_NilPayload(t *testing.T) {
	t.Parallel()

	msg, err := NewMessage(MsgPing, nil)
	require.NoError(t, err)

	data, err := msg.Encode()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"ping"}`, string(data))
}

func TestMustNewMessage_Panics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		MustNewMessage(MsgError, make(chan int))
	})
}

func TestEncodeDecode_UpdateGame(t *testing.T) {
	t.Parallel()

	s := state.Apply(nil, state.StartGame{Width: 800, Height: 600, GameID: "ABC123"})
	s = state.Apply(s, state.AddStroke{Path: []state.Point{{X: 0, Y: 0}, {X: 3, Y: 4}}, Color: "#000000", Width: 2})

	original := MustNewMessage(MsgUpdateGame, UpdateGamePayload{GameID: "ABC123", GameState: s})
	data, err := original.Encode()
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, MsgUpdateGame, decoded.Type)

	payload, err := ParsePayload[UpdateGamePayload](decoded)
	require.NoError(t, err)
	assert.Equal(t, "ABC123", payload.GameID)
	assert.Equal(t, s.AllStrokes(), payload.GameState.AllStrokes())
}

func TestDecode_Invalid(t *testing.T) {
	t.Parallel()

	_, err := Decode([]byte("{not json"))
	assert.Error(t, err)
}

func TestParsePayload(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantErr bool
		want    JoinGamePayload
	}{
		{name: "full", payload: `{"gameId":"X1","isPlayer1":true}`, want: JoinGamePayload{GameID: "X1", IsPlayer1: true}},
		{name: "empty", payload: ``, want: JoinGamePayload{}},
		{name: "wrong type", payload: `{"gameId":12}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParsePayload[JoinGamePayload](&Message{Type: MsgJoinGame, Payload: []byte(tt.payload)})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestNewErrorMessage(t *testing.T) {
	t.Parallel()

	msg := NewErrorMessage(ErrCodeRateLimit)
	assert.Equal(t, MsgError, msg.Type)

	payload, err := ParsePayload[ErrorPayload](msg)
	require.NoError(t, err)
	assert.Equal(t, ErrCodeRateLimit, payload.Code)
	assert.Equal(t, ErrorMessages[ErrCodeRateLimit], payload.Message)
}
