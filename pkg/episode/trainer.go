package episode

import (
	"context"
	"fmt"

	"github.com/Zarux/tictactd/internal/logger"
	"github.com/Zarux/tictactd/pkg/tictactoe"
)

// Tally counts outcomes from the agent's point of view.
type Tally struct {
	Wins   int
	Losses int
	Ties   int
}

func (t *Tally) Add(o tictactoe.Outcome) {
	switch o {
	case tictactoe.Win:
		t.Wins++
	case tictactoe.Loss:
		t.Losses++
	default:
		t.Ties++
	}
}

func (t Tally) Total() int {
	return t.Wins + t.Losses + t.Ties
}

func (t Tally) WinRate() float64 {
	if t.Total() == 0 {
		return 0
	}

	return float64(t.Wins) / float64(t.Total())
}

func (t Tally) String() string {
	return fmt.Sprintf("win=%d, lose=%d, tie=%d", t.Wins, t.Losses, t.Ties)
}

// Record is handed to observers after every episode.
type Record struct {
	Episode int
	Result  Result
	Tally   Tally
}

type Trainer struct {
	driver    *Driver
	logEvery  int
	observers []func(Record)
}

type TrainerOption func(*Trainer)

// WithLogEvery logs the running tally every n episodes. 0 disables progress logs.
func WithLogEvery(n int) TrainerOption {
	return func(t *Trainer) {
		t.logEvery = n
	}
}

func WithObserver(fn func(Record)) TrainerOption {
	return func(t *Trainer) {
		t.observers = append(t.observers, fn)
	}
}

func NewTrainer(d *Driver, opts ...TrainerOption) *Trainer {
	t := &Trainer{driver: d}
	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Run plays episodes sequentially. It stops early, returning the tally so far,
// when ctx is done.
func (t *Trainer) Run(ctx context.Context, episodes int) (Tally, error) {
	log := logger.FromContext(ctx)
	log.Info().Int("episodes", episodes).Msg("training started")

	var tally Tally
	for i := range episodes {
		if err := ctx.Err(); err != nil {
			log.Warn().Int("episode", i).Err(err).Msg("training interrupted")
			return tally, err
		}

		res, err := t.driver.Play()
		if err != nil {
			return tally, fmt.Errorf("episode %d: %w", i+1, err)
		}

		tally.Add(res.Outcome)
		log.Debug().
			Int("episode", i+1).
			Stringer("outcome", res.Outcome).
			Int("credited", res.Credited).
			Msg("episode finished")

		for _, fn := range t.observers {
			fn(Record{Episode: i + 1, Result: res, Tally: tally})
		}

		if t.logEvery > 0 && (i+1)%t.logEvery == 0 {
			log.Info().
				Int("episode", i+1).
				Int("wins", tally.Wins).
				Int("losses", tally.Losses).
				Int("ties", tally.Ties).
				Float64("win_rate", tally.WinRate()).
				Msg("training progress")
		}
	}

	log.Info().Stringer("tally", tally).Msg("training finished")

	return tally, nil
}
