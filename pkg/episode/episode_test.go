package episode

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Zarux/tictactd/pkg/opponent"
	"github.com/Zarux/tictactd/pkg/td"
	"github.com/Zarux/tictactd/pkg/tictactoe"
)

type scriptedAgent struct {
	moves   []int
	next    int
	history []string
	updates []float64
	cleared int
}

func (a *scriptedAgent) ChooseAction(b *tictactoe.Board) tictactoe.Action {
	idx := a.moves[a.next]
	a.next++
	a.history = append(a.history, b.KeyAfter(idx, tictactoe.Agent))
	return tictactoe.ActionAt(tictactoe.Agent, idx)
}

func (a *scriptedAgent) UpdateAfterEpisode(v float64) {
	a.updates = append(a.updates, v)
	a.history = nil
}

func (a *scriptedAgent) History() []string { return a.history }

func (a *scriptedAgent) ClearHistory() {
	a.cleared++
	a.history = nil
}

type scriptedOpponent struct {
	moves []int
	next  int
}

func (o *scriptedOpponent) NextAction(b *tictactoe.Board) tictactoe.Action {
	if o.next >= len(o.moves) || b.IsTerminal() {
		return tictactoe.NoAction
	}
	idx := o.moves[o.next]
	o.next++
	return tictactoe.ActionAt(tictactoe.Opponent, idx)
}

func TestPlay(t *testing.T) {
	t.Run("win stops after the pair and backs up 1", func(t *testing.T) {
		agent := &scriptedAgent{moves: []int{0, 1, 2}}
		opp := &scriptedOpponent{moves: []int{3, 4, 8}}

		res, err := New(agent, opp).Play()
		require.NoError(t, err)

		require.Equal(t, tictactoe.Win, res.Outcome)
		require.Equal(t, "111220002", res.Board.Key(), "Opponent should still reply after the winning move")
		require.Equal(t, 3, res.Credited)
		require.True(t, res.Learned)
		require.Equal(t, []float64{1}, agent.updates)
		require.Empty(t, agent.history)
	})

	t.Run("loss backs up 0", func(t *testing.T) {
		agent := &scriptedAgent{moves: []int{0, 1, 8}}
		opp := &scriptedOpponent{moves: []int{3, 4, 5}}

		res, err := New(agent, opp).Play()
		require.NoError(t, err)

		require.Equal(t, tictactoe.Loss, res.Outcome)
		require.Equal(t, []float64{0}, agent.updates)
	})

	t.Run("reply completing an earlier line turns a win into a loss", func(t *testing.T) {
		agent := &scriptedAgent{moves: []int{3, 4, 5}}
		opp := &scriptedOpponent{moves: []int{0, 1, 2}}

		res, err := New(agent, opp).Play()
		require.NoError(t, err)

		require.Equal(t, "222111000", res.Board.Key())
		require.Equal(t, tictactoe.Loss, res.Outcome, "First matching line in scan order decides")
		require.Equal(t, 3, res.Credited)
		require.Equal(t, []float64{0}, agent.updates)
	})

	t.Run("tie is not backed up and history is cleared", func(t *testing.T) {
		agent := &scriptedAgent{moves: []int{0, 2, 3, 7, 8}}
		opp := &scriptedOpponent{moves: []int{1, 4, 5, 6}}

		res, err := New(agent, opp).Play()
		require.NoError(t, err)

		require.Equal(t, tictactoe.Undetermined, res.Outcome)
		require.True(t, res.Board.IsTerminal())
		require.False(t, res.Learned)
		require.Empty(t, agent.updates)
		require.Empty(t, agent.history)
		require.Equal(t, 1, agent.cleared)
	})

	t.Run("tie value is backed up when set", func(t *testing.T) {
		agent := &scriptedAgent{moves: []int{0, 2, 3, 7, 8}}
		opp := &scriptedOpponent{moves: []int{1, 4, 5, 6}}

		res, err := New(agent, opp, WithTieValue(0.5)).Play()
		require.NoError(t, err)

		require.True(t, res.Learned)
		require.Equal(t, []float64{0.5}, agent.updates)
	})

	t.Run("without learning never updates", func(t *testing.T) {
		agent := &scriptedAgent{moves: []int{0, 1, 2}}
		opp := &scriptedOpponent{moves: []int{3, 4, 8}}

		res, err := New(agent, opp, WithoutLearning()).Play()
		require.NoError(t, err)

		require.Equal(t, tictactoe.Win, res.Outcome)
		require.Empty(t, agent.updates)
		require.Empty(t, agent.history)
	})

	t.Run("play out fills the board", func(t *testing.T) {
		agent := &scriptedAgent{moves: []int{0, 1, 2, 6, 7}}
		opp := &scriptedOpponent{moves: []int{3, 4, 8, 5}}

		res, err := New(agent, opp, WithPlayOut()).Play()
		require.NoError(t, err)

		require.True(t, res.Board.IsTerminal())
		require.Equal(t, tictactoe.Win, res.Outcome)
		require.Equal(t, 5, res.Credited)
	})

	t.Run("illegal opponent move is reported", func(t *testing.T) {
		agent := &scriptedAgent{moves: []int{0}}
		opp := &scriptedOpponent{moves: []int{0}}

		_, err := New(agent, opp).Play()
		require.ErrorIs(t, err, tictactoe.ErrIllegalMove)
		require.Empty(t, agent.history, "History should be cleared on error too")
	})
}

func TestTrainer(t *testing.T) {
	t.Run("tally and observers", func(t *testing.T) {
		agent := td.New(td.WithRand(rand.New(rand.NewPCG(1, 1))))
		opp := opponent.NewRandom(rand.New(rand.NewPCG(2, 2)))

		var records []Record
		tally, err := NewTrainer(New(agent, opp), WithObserver(func(r Record) {
			records = append(records, r)
		})).Run(context.Background(), 50)
		require.NoError(t, err)

		require.Equal(t, 50, tally.Total())
		require.Len(t, records, 50)
		require.Equal(t, 50, records[49].Episode)
		require.Equal(t, tally, records[49].Tally)
		require.Empty(t, agent.History())
	})

	t.Run("stops when the context is done", func(t *testing.T) {
		agent := td.New()
		opp := opponent.NewRandom(rand.New(rand.NewPCG(3, 3)))
		ctx, cancel := context.WithCancel(context.Background())

		tally, err := NewTrainer(New(agent, opp), WithObserver(func(r Record) {
			if r.Episode == 10 {
				cancel()
			}
		})).Run(ctx, 100)

		require.ErrorIs(t, err, context.Canceled)
		require.Equal(t, 10, tally.Total())
	})
}

func TestTally(t *testing.T) {
	var tally Tally
	require.Zero(t, tally.WinRate())

	tally.Add(tictactoe.Win)
	tally.Add(tictactoe.Win)
	tally.Add(tictactoe.Loss)
	tally.Add(tictactoe.Undetermined)

	require.Equal(t, Tally{Wins: 2, Losses: 1, Ties: 1}, tally)
	require.Equal(t, 0.5, tally.WinRate())
	require.Equal(t, "win=2, lose=1, tie=1", tally.String())
}

func TestLearningBeatsFrozenAgent(t *testing.T) {
	if testing.Short() {
		t.Skip("plays 10,000 episodes")
	}

	const episodes = 5_000
	const window = 1_000

	run := func(alpha float64) float64 {
		agent := td.New(td.WithLearningRate(alpha), td.WithRand(rand.New(rand.NewPCG(11, 11))))
		opp := opponent.NewRandom(rand.New(rand.NewPCG(12, 12)))

		var late Tally
		_, err := NewTrainer(New(agent, opp), WithObserver(func(r Record) {
			if r.Episode > episodes-window {
				late.Add(r.Result.Outcome)
			}
		})).Run(context.Background(), episodes)
		require.NoError(t, err)

		return late.WinRate()
	}

	frozen := run(0)
	learned := run(td.DefaultLearningRate)

	require.Greater(t, learned, frozen+0.05,
		"Learning agent should win clearly more often than one frozen at 0.5")
}
