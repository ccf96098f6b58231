package opponent

import (
	"math/rand/v2"

	"github.com/Zarux/tictactd/pkg/tictactoe"
)

// Random plays a uniformly random legal move for the opponent side.
type Random struct {
	rng *rand.Rand
}

func NewRandom(rng *rand.Rand) *Random {
	return &Random{rng: rng}
}

// NextAction returns NoAction when the board is full.
func (r *Random) NextAction(b *tictactoe.Board) tictactoe.Action {
	moves := b.LegalMoves()
	if len(moves) == 0 {
		return tictactoe.NoAction
	}

	return tictactoe.ActionAt(tictactoe.Opponent, moves[r.rng.IntN(len(moves))])
}
