package idgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIDUnique(t *testing.T) {
	seen := make(map[string]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		id := NewID()
		require.NotEmpty(t, id)
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
}

func TestSequence(t *testing.T) {
	next := Sequence("n")
	assert.Equal(t, "n-1", next())
	assert.Equal(t, "n-2", next())

	other := Sequence("n")
	assert.Equal(t, "n-1", other(), "sequences do not share counters")
}
