package idgen

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUUIDv7Unique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := New()
		require.True(t, Valid(id))
		require.False(t, seen[id])
		seen[id] = true
	}
}

func TestPrefixedAndSequence(t *testing.T) {
	gen := Prefixed("lyr_", Sequence("n"))
	require.Equal(t, "lyr_n1", gen())
	require.Equal(t, "lyr_n2", gen())

	seq := Sequence("")
	for i := 0; i < 9; i++ {
		seq()
	}
	require.Equal(t, "10", seq())
}
