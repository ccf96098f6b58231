package tictactd

import (
	"context"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Zarux/tictactd/pkg/episode"
	"github.com/Zarux/tictactd/pkg/td"
)

func playOut(t *testing.T, s *Service) GameView {
	t.Helper()
	ctx := context.Background()

	view, err := s.NewGame(ctx)
	require.NoError(t, err)
	for !view.Over {
		idx := strings.IndexByte(view.State, '0')
		view, err = s.NewMove(ctx, view.ID, Move{Row: idx / 3, Col: idx % 3}, view.Hash)
		require.NoError(t, err)
	}

	return view
}

func TestFinishedGamesAreBounded(t *testing.T) {
	agent := td.New(td.WithEpsilon(0), td.WithRand(rand.New(rand.NewPCG(4, 4))))
	s := New(agent, episode.Tally{}, WithKeepFinished(1))

	first := playOut(t, s)
	_, err := s.Game(first.ID)
	require.NoError(t, err, "Latest finished game should stay readable")

	live, err := s.NewGame(context.Background())
	require.NoError(t, err)

	second := playOut(t, s)

	_, err = s.Game(first.ID)
	require.ErrorIs(t, err, ErrGameNotFound, "Oldest finished game should be dropped")
	_, err = s.Game(second.ID)
	require.NoError(t, err)
	_, err = s.Game(live.ID)
	require.NoError(t, err, "Games in play are kept")

	require.Equal(t, 3, s.Stats().Games)
	require.Len(t, s.games, 2)
}
