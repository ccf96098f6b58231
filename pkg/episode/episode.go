package episode

import (
	"fmt"

	"github.com/Zarux/tictactd/pkg/td"
	"github.com/Zarux/tictactd/pkg/tictactoe"
)

type learner interface {
	ChooseAction(*tictactoe.Board) tictactoe.Action
	UpdateAfterEpisode(terminalValue float64)
	History() []string
	ClearHistory()
}

type opponentPolicy interface {
	NextAction(*tictactoe.Board) tictactoe.Action
}

// Result is the finished board of one episode.
type Result struct {
	Outcome tictactoe.Outcome
	Board   *tictactoe.Board
	// Credited is the number of greedy agent moves the update saw.
	Credited int
	Learned  bool
}

type Driver struct {
	agent    learner
	opponent opponentPolicy

	learn    bool
	tieValue *float64
	playOut  bool
}

type Option func(*Driver)

// WithTieValue backs v up through history after a tie. Ties are skipped by default.
func WithTieValue(v float64) Option {
	return func(d *Driver) {
		d.tieValue = &v
	}
}

// WithoutLearning plays episodes without updating the agent.
func WithoutLearning() Option {
	return func(d *Driver) {
		d.learn = false
	}
}

// WithPlayOut keeps playing after a decided game until the board is full.
func WithPlayOut() Option {
	return func(d *Driver) {
		d.playOut = true
	}
}

func New(agent learner, opp opponentPolicy, opts ...Option) *Driver {
	d := &Driver{
		agent:    agent,
		opponent: opp,
		learn:    true,
	}
	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Play runs one episode from an empty board. The agent moves first; the outcome is
// checked after each agent and opponent pair.
func (d *Driver) Play() (Result, error) {
	b := tictactoe.NewBoard()
	defer d.agent.ClearHistory()

	for !b.IsTerminal() {
		if err := b.ApplyAction(d.agent.ChooseAction(b)); err != nil {
			return Result{}, fmt.Errorf("agent move: %w", err)
		}

		if err := b.ApplyAction(d.opponent.NextAction(b)); err != nil {
			return Result{}, fmt.Errorf("opponent move: %w", err)
		}

		if !d.playOut && b.Outcome() != tictactoe.Undetermined {
			break
		}
	}

	res := Result{
		Outcome:  b.Outcome(),
		Board:    b,
		Credited: len(d.agent.History()),
	}

	if !d.learn {
		return res, nil
	}

	switch {
	case res.Outcome.Decisive():
		d.agent.UpdateAfterEpisode(td.TerminalValue(res.Outcome))
		res.Learned = true
	case d.tieValue != nil:
		d.agent.UpdateAfterEpisode(*d.tieValue)
		res.Learned = true
	}

	return res, nil
}
