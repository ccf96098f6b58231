package game

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Zarux/tictactd/internal/config"
	"github.com/Zarux/tictactd/pkg/opponent"
	"github.com/Zarux/tictactd/pkg/tictactoe"
	"github.com/Zarux/tictactd/services/game/settings"
)

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Seed = 7
	return cfg
}

func TestSetup(t *testing.T) {
	t.Run("random mode", func(t *testing.T) {
		bot, botPlayer, train := New(testConfig()).setup(context.Background(), settings.Settings{Mode: settings.ModeVersusRandom})

		require.IsType(t, &opponent.Random{}, bot)
		require.Equal(t, tictactoe.Opponent, botPlayer)
		require.Nil(t, train, "Random replies need no training")
	})

	t.Run("agent mode trains then plays greedily", func(t *testing.T) {
		bot, botPlayer, train := New(testConfig()).setup(context.Background(), settings.Settings{
			Mode:     settings.ModeVersusAgent,
			Episodes: 200,
		})

		require.Equal(t, tictactoe.Agent, botPlayer)
		require.NotNil(t, train)

		tally, err := train()
		require.NoError(t, err)
		require.Equal(t, 200, tally.Total())

		ab, ok := bot.(agentBot)
		require.True(t, ok)
		require.Zero(t, ab.agent.Epsilon(), "Agent should stop exploring after training")
		require.Positive(t, ab.agent.Values().Len())

		a := bot.NextAction(tictactoe.NewBoard())
		require.Equal(t, tictactoe.Agent, a.Player)
		require.Empty(t, ab.agent.History(), "Play moves should not be recorded")
		require.NotNil(t, ab.Stats())
	})

	t.Run("cancelled training still returns", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, _, train := New(testConfig()).setup(ctx, settings.Settings{Mode: settings.ModeVersusAgent, Episodes: 100})
		tally, err := train()
		require.ErrorIs(t, err, context.Canceled)
		require.Less(t, tally.Total(), 100)
	})
}
