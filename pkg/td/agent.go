package td

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/Zarux/tictactd/pkg/tictactoe"
)

const (
	DefaultEpsilon      = 0.1
	DefaultLearningRate = 0.1
)

// LastMoveStats describes the most recent ChooseAction decision.
type LastMoveStats struct {
	Action     tictactoe.Action
	Explored   bool
	Candidates int
	BestValue  float64
}

// Agent learns state values with TD(0) and plays epsilon-greedily against them.
// It is not safe for concurrent use.
type Agent struct {
	values  *ValueTable
	history []string
	epsilon float64
	alpha   float64
	rng     *rand.Rand

	lastMoveStats *LastMoveStats
}

type Option func(*Agent)

func WithEpsilon(epsilon float64) Option {
	return func(a *Agent) {
		a.epsilon = epsilon
	}
}

func WithLearningRate(alpha float64) Option {
	return func(a *Agent) {
		a.alpha = alpha
	}
}

// WithRand sets the source used for exploration and tie-breaks.
func WithRand(rng *rand.Rand) Option {
	return func(a *Agent) {
		a.rng = rng
	}
}

func WithValueTable(values *ValueTable) Option {
	return func(a *Agent) {
		a.values = values
	}
}

func New(opts ...Option) *Agent {
	a := &Agent{
		epsilon: DefaultEpsilon,
		alpha:   DefaultLearningRate,
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.values == nil {
		a.values = NewValueTable()
	}
	if a.rng == nil {
		a.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	mustUnit("epsilon", a.epsilon)
	mustUnit("learning rate", a.alpha)

	return a
}

func mustUnit(name string, v float64) {
	if v < 0 || v > 1 {
		panic(fmt.Sprintf("%s must be within [0, 1], got %v", name, v))
	}
}

func (a *Agent) UpdateEpsilon(epsilon float64) {
	mustUnit("epsilon", epsilon)
	a.epsilon = epsilon
}

func (a *Agent) Epsilon() float64 {
	return a.epsilon
}

func (a *Agent) Values() *ValueTable {
	return a.values
}

func (a *Agent) Stats() *LastMoveStats {
	return a.lastMoveStats
}

// History returns a copy of the keys credited so far this episode, oldest first.
func (a *Agent) History() []string {
	return slices.Clone(a.history)
}

func (a *Agent) ClearHistory() {
	a.history = a.history[:0]
}

type candidate struct {
	idx int
	key string
}

// ChooseAction picks the agent's next move. Greedy moves are recorded for the
// end-of-episode update. Exploratory moves are not.
func (a *Agent) ChooseAction(b *tictactoe.Board) tictactoe.Action {
	a.values.GetOrInit(b.Key())
	a.lastMoveStats = nil

	if a.rng.Float64() < a.epsilon {
		return a.Explore(b)
	}

	var best []candidate
	maxValue := -1.0
	for _, idx := range b.LegalMoves() {
		key := b.KeyAfter(idx, tictactoe.Agent)
		v := a.values.GetOrInit(key)
		if v > maxValue {
			best = best[:0]
			maxValue = v
		}
		if v == maxValue {
			best = append(best, candidate{idx: idx, key: key})
		}
	}

	if len(best) == 0 {
		return tictactoe.NoAction
	}

	c := best[a.rng.IntN(len(best))]
	a.history = append(a.history, c.key)

	action := tictactoe.ActionAt(tictactoe.Agent, c.idx)
	a.lastMoveStats = &LastMoveStats{
		Action:     action,
		Candidates: len(best),
		BestValue:  maxValue,
	}

	return action
}

// Explore picks uniformly among all legal moves.
func (a *Agent) Explore(b *tictactoe.Board) tictactoe.Action {
	moves := b.LegalMoves()
	if len(moves) == 0 {
		return tictactoe.NoAction
	}

	for _, idx := range moves {
		a.values.GetOrInit(b.KeyAfter(idx, tictactoe.Agent))
	}

	idx := moves[a.rng.IntN(len(moves))]
	action := tictactoe.ActionAt(tictactoe.Agent, idx)
	a.lastMoveStats = &LastMoveStats{
		Action:     action,
		Explored:   true,
		Candidates: len(moves),
		BestValue:  a.values.GetOrInit(b.KeyAfter(idx, tictactoe.Agent)),
	}

	return action
}

// UpdateAfterEpisode backs terminalValue up through the episode's history,
// newest first, and clears the history.
//
// The newest state is first set to terminalValue and then blended once more in
// the backward walk, starting from the estimate it held before the call.
func (a *Agent) UpdateAfterEpisode(terminalValue float64) {
	defer a.ClearHistory()

	if len(a.history) == 0 {
		return
	}

	last := len(a.history) - 1
	prior := a.values.GetOrInit(a.history[last])
	a.values.Set(a.history[last], terminalValue)

	target := terminalValue
	for i := last; i >= 0; i-- {
		key := a.history[i]

		old := a.values.GetOrInit(key)
		if i == last {
			old = prior
		}

		v := old + a.alpha*(target-old)
		a.values.Set(key, v)
		target = v
	}
}

// TerminalValue maps a decisive outcome to its training target.
func TerminalValue(o tictactoe.Outcome) float64 {
	if o == tictactoe.Win {
		return 1
	}

	return 0
}
