package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/charmbracelet/lipgloss"

	"github.com/Zarux/tictactd/internal/config"
	"github.com/Zarux/tictactd/internal/logger"
	"github.com/Zarux/tictactd/pkg/episode"
	"github.com/Zarux/tictactd/pkg/opponent"
	"github.com/Zarux/tictactd/pkg/report"
	"github.com/Zarux/tictactd/pkg/td"
)

var (
	winStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#007e50ff", Dark: "#6afd76ff"}).Render
	lossStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#bb0000ff", Dark: "#df1010ff"}).Render
	tieStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#8a880fff", Dark: "#ddda1dff"}).Render
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	flag.IntVar(&cfg.Episodes, "episodes", cfg.Episodes, "Number of training episodes")
	flag.Float64Var(&cfg.Epsilon, "epsilon", cfg.Epsilon, "Exploration rate")
	flag.Float64Var(&cfg.Alpha, "alpha", cfg.Alpha, "Learning rate")
	flag.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "Random seed, 0 for a random one")
	flag.BoolVar(&cfg.PropagateTies, "ties", cfg.PropagateTies, "Back up 0.5 after a tie")
	flag.IntVar(&cfg.LogEvery, "log-every", cfg.LogEvery, "Log the running tally every n episodes")
	flag.StringVar(&cfg.CSVPath, "csv", cfg.CSVPath, "Write one CSV row per episode to this file")
	flag.StringVar(&cfg.ChartPath, "chart", cfg.ChartPath, "Write an HTML learning curve to this file")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level")
	flag.IntVar(&cfg.ChartWindow, "window", cfg.ChartWindow, "Episodes per learning curve point")
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logger.New(logger.Options{Level: cfg.LogLevel, JSON: cfg.LogJSON})
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logger.NewContext(ctx, log)

	agent := td.New(
		td.WithEpsilon(cfg.Epsilon),
		td.WithLearningRate(cfg.Alpha),
		td.WithRand(cfg.Rand(1)),
	)

	var opts []episode.Option
	if cfg.PropagateTies {
		opts = append(opts, episode.WithTieValue(td.DefaultValue))
	}
	driver := episode.New(agent, opponent.NewRandom(cfg.Rand(2)), opts...)

	trainerOpts := []episode.TrainerOption{episode.WithLogEvery(cfg.LogEvery)}

	var csvWriter *report.Writer
	var csvErr error
	if cfg.CSVPath != "" {
		f, err := os.Create(cfg.CSVPath)
		if err != nil {
			return fmt.Errorf("failed to create csv file: %w", err)
		}
		defer f.Close()

		csvWriter = report.NewWriter(f)
		trainerOpts = append(trainerOpts, episode.WithObserver(func(r episode.Record) {
			if csvErr != nil {
				return
			}
			csvErr = csvWriter.Write(report.EpisodeRecord{
				Episode:   r.Episode,
				Outcome:   r.Result.Outcome.String(),
				Moves:     r.Result.Board.Turn,
				Credited:  r.Result.Credited,
				TableSize: agent.Values().Len(),
				WinRate:   r.Tally.WinRate(),
			})
		}))
	}

	var curve *report.Curve
	if cfg.ChartPath != "" {
		curve = report.NewCurve(cfg.ChartWindow)
		trainerOpts = append(trainerOpts, episode.WithObserver(func(r episode.Record) {
			curve.Observe(r.Result.Outcome)
		}))
	}

	tally, trainErr := episode.NewTrainer(driver, trainerOpts...).Run(ctx, cfg.Episodes)

	fmt.Printf("%s, %s, %s\n",
		winStyle(fmt.Sprintf("win=%d", tally.Wins)),
		lossStyle(fmt.Sprintf("lose=%d", tally.Losses)),
		tieStyle(fmt.Sprintf("tie=%d", tally.Ties)),
	)
	log.Info().Int("states", agent.Values().Len()).Msg("value table size")

	if csvWriter != nil {
		if err := csvWriter.Flush(); err != nil && csvErr == nil {
			csvErr = err
		}
		if csvErr != nil {
			return csvErr
		}
		log.Info().Str("path", cfg.CSVPath).Msg("stored episode records")
	}

	if curve != nil {
		f, err := os.Create(cfg.ChartPath)
		if err != nil {
			return fmt.Errorf("failed to create chart file: %w", err)
		}
		defer f.Close()

		if err := curve.Render(f); err != nil {
			return err
		}
		log.Info().Str("path", cfg.ChartPath).Msg("stored learning curve")
	}

	return trainErr
}
