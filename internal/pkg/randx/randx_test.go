package randx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionID(t *testing.T) {
	t.Parallel()

	seen := make(map[string]struct{})
	for range 100 {
		id, err := SessionID()
		require.NoError(t, err)
		require.Len(t, id, SessionIDLength)
		for _, c := range id {
			assert.Contains(t, Base62Chars, string(c))
		}

		_, dup := seen[id]
		assert.False(t, dup, "duplicate id %q", id)
		seen[id] = struct{}{}
	}
}

func TestBase62_Length(t *testing.T) {
	t.Parallel()

	s, err := Base62(0)
	require.NoError(t, err)
	assert.Empty(t, s)

	s, err = Base62(32)
	require.NoError(t, err)
	assert.Len(t, s, 32)
}

func TestNewID_Version4(t *testing.T) {
	t.Parallel()

	id := NewID()
	assert.EqualValues(t, 4, id.Version())
	assert.NotEqual(t, id, NewID())
}
