package game

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Zarux/tictactd/internal/config"
	"github.com/Zarux/tictactd/internal/logger"
	"github.com/Zarux/tictactd/pkg/episode"
	"github.com/Zarux/tictactd/pkg/opponent"
	"github.com/Zarux/tictactd/pkg/td"
	"github.com/Zarux/tictactd/pkg/tictactoe"
	"github.com/Zarux/tictactd/services/game/game"
	"github.com/Zarux/tictactd/services/game/settings"
)

type Service struct {
	cfg config.Config
}

func New(cfg config.Config) *Service {
	return &Service{
		cfg: cfg,
	}
}

// agentBot plays the trained agent greedily without recording history.
type agentBot struct {
	agent *td.Agent
}

func (b agentBot) NextAction(board *tictactoe.Board) tictactoe.Action {
	defer b.agent.ClearHistory()
	return b.agent.ChooseAction(board)
}

func (b agentBot) Stats() *td.LastMoveStats {
	return b.agent.Stats()
}

func (s *Service) Play(ctx context.Context) error {
	log := logger.FromContext(ctx)

	settingsModel := settings.InitialModel(header())
	if _, err := tea.NewProgram(settingsModel, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("settings: %w", err)
	}

	if settingsModel.Cancelled() {
		return nil
	}

	chosen := settingsModel.GetSettings()
	log.Info().Int("mode", int(chosen.Mode)).Int("episodes", chosen.Episodes).Msg("game settings")

	bot, botPlayer, train := s.setup(ctx, chosen)

	for {
		gameModel := game.InitialModel(header(), tictactoe.NewBoard(), bot, botPlayer, train)
		if _, err := tea.NewProgram(gameModel, tea.WithAltScreen()).Run(); err != nil {
			return fmt.Errorf("game: %w", err)
		}

		if !gameModel.Replay {
			return nil
		}

		train = nil
	}
}

func (s *Service) setup(ctx context.Context, chosen settings.Settings) (game.Bot, tictactoe.Player, func() (episode.Tally, error)) {
	if chosen.Mode == settings.ModeVersusRandom {
		return opponent.NewRandom(s.cfg.Rand(2)), tictactoe.Opponent, nil
	}

	agent := td.New(
		td.WithEpsilon(s.cfg.Epsilon),
		td.WithLearningRate(s.cfg.Alpha),
		td.WithRand(s.cfg.Rand(1)),
	)

	var opts []episode.Option
	if s.cfg.PropagateTies {
		opts = append(opts, episode.WithTieValue(td.DefaultValue))
	}
	driver := episode.New(agent, opponent.NewRandom(s.cfg.Rand(2)), opts...)
	trainer := episode.NewTrainer(driver, episode.WithLogEvery(s.cfg.LogEvery))

	train := func() (episode.Tally, error) {
		tally, err := trainer.Run(ctx, chosen.Episodes)
		agent.UpdateEpsilon(0)
		return tally, err
	}

	return agentBot{agent: agent}, tictactoe.Agent, train
}

var (
	headerStyle1 = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#4204b5ff", Dark: "#4204b5ff"}).Render
	headerStyle2 = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#19b504ff", Dark: "#19b504ff"}).Render
	headerStyle3 = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#b55404ff", Dark: "#b55404ff"}).Render
)

func header() string {
	return fmt.Sprintf(
		"%s %s %s %s %s\n\n",
		headerStyle2("---"),
		headerStyle1("Tic"),
		headerStyle2("Tac"),
		headerStyle3("TD"),
		headerStyle2("---"),
	)
}
