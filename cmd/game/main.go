package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/Zarux/tictactd/internal/config"
	"github.com/Zarux/tictactd/internal/logger"
	"github.com/Zarux/tictactd/services/game"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// The terminal belongs to the UI, so logs go to a file or nowhere.
	var out io.Writer = io.Discard
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}

	log := logger.New(logger.Options{Level: cfg.LogLevel, JSON: cfg.LogJSON, Out: out})
	ctx := logger.NewContext(context.Background(), log)

	gameService := game.New(cfg)
	if err := gameService.Play(ctx); err != nil {
		log.Error().Err(err).Msg("game failed")
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
