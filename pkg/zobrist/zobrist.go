package zobrist

import "math/rand/v2"

// New returns one random key per cell and player, indexed as [cell][player].
func New(cells int, rng *rand.Rand) [][]uint64 {
	zobrist := make([][]uint64, cells)
	for i := range cells {
		zobrist[i] = make([]uint64, 2) // index by player
		zobrist[i][0] = rng.Uint64()
		zobrist[i][1] = rng.Uint64()
	}

	return zobrist
}

// Seeded is New with a PCG source built from seed, so keys are stable across runs.
func Seeded(cells int, seed uint64) [][]uint64 {
	return New(cells, rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}
