package zobrist

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	keys := New(9, rand.New(rand.NewPCG(1, 2)))
	require.Len(t, keys, 9)

	seen := make(map[uint64]bool)
	for _, k := range keys {
		require.Len(t, k, 2)
		for _, v := range k {
			require.False(t, seen[v], "Keys should not repeat")
			seen[v] = true
		}
	}
}

func TestSeeded(t *testing.T) {
	require.Equal(t, Seeded(9, 42), Seeded(9, 42), "Same seed should give the same keys")
	require.NotEqual(t, Seeded(9, 42), Seeded(9, 43))
}
