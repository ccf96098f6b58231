package opponent

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Zarux/tictactd/pkg/tictactoe"
)

func TestNextAction(t *testing.T) {
	t.Run("picks empty cells uniformly", func(t *testing.T) {
		r := NewRandom(rand.New(rand.NewPCG(7, 7)))
		b, err := tictactoe.ParseKey("120010200")
		require.NoError(t, err)

		counts := map[int]int{}
		const draws = 6000
		for range draws {
			a := r.NextAction(b)
			require.Equal(t, tictactoe.Opponent, a.Player)
			require.Equal(t, tictactoe.Empty, b.Get(a.Row, a.Col))
			counts[a.Idx()]++
		}

		require.Len(t, counts, 5)
		for idx, n := range counts {
			require.InDelta(t, draws/5, n, 150, "cell %d drawn %d times", idx, n)
		}
	})

	t.Run("full board yields no action", func(t *testing.T) {
		r := NewRandom(rand.New(rand.NewPCG(1, 1)))
		b, err := tictactoe.ParseKey("121212212")
		require.NoError(t, err)

		require.Equal(t, tictactoe.NoAction, r.NextAction(b))
	})
}
