package sound

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChimesDefined(t *testing.T) {
	t.Parallel()

	for _, name := range []string{Turn, Joined, Alert} {
		freqs, ok := chimes[name]
		assert.True(t, ok, name)
		assert.NotEmpty(t, freqs, name)
	}
}

func TestPlayBeforeInitIsSilent(t *testing.T) {
	t.Parallel()

	sm := NewSoundManager(t.TempDir())
	assert.NotPanics(t, func() {
		sm.Play(Turn)
		sm.Play("missing")
		sm.Close()
	})
}
