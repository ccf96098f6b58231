package main

import (
	"context"
	"flag"
	"net/http"
	"os"

	"github.com/Zarux/tictactd/internal/config"
	"github.com/Zarux/tictactd/internal/logger"
	"github.com/Zarux/tictactd/pkg/episode"
	"github.com/Zarux/tictactd/pkg/opponent"
	"github.com/Zarux/tictactd/pkg/td"
	"github.com/Zarux/tictactd/services/tictactd"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.Options{}).Fatal().Err(err).Msg("loading config")
	}

	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "Listen address")
	flag.IntVar(&cfg.Episodes, "episodes", cfg.Episodes, "Training episodes before serving")
	flag.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "Random seed, 0 for a random one")
	flag.Parse()

	log := logger.New(logger.Options{Level: cfg.LogLevel, JSON: cfg.LogJSON, Out: os.Stdout})
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

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

	ctx := logger.NewContext(context.Background(), log)
	tally, err := episode.NewTrainer(driver, episode.WithLogEvery(cfg.LogEvery)).Run(ctx, cfg.Episodes)
	if err != nil {
		log.Fatal().Err(err).Msg("training failed")
	}
	agent.UpdateEpsilon(0)

	svc := tictactd.New(agent, tally)

	h := tictactd.HTTPHandler(svc)
	handler := rootHandler("/tictactd/v1", h)

	middlewares := []func(http.Handler) http.Handler{
		logger.NewMiddleware(log),
	}

	for _, mw := range middlewares {
		handler = mw(handler)
	}

	log.Info().Str("addr", cfg.Addr).Msg("listening")
	if err := http.ListenAndServe(cfg.Addr, handler); err != nil {
		log.Error().Err(err).Msg("server stopped")
	}
}

func rootHandler(root string, h http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.Handle(root+"/", http.StripPrefix(root, h))
	return mux
}
