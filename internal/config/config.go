package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math/rand/v2"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/Zarux/tictactd/pkg/td"
)

const envPrefix = "TICTACTD_"

type Config struct {
	Episodes int
	Epsilon  float64
	Alpha    float64
	// Seed 0 picks a random seed.
	Seed          uint64
	PropagateTies bool
	LogEvery      int

	Addr      string
	LogLevel  string
	LogJSON   bool
	LogFile   string
	CSVPath   string
	ChartPath string

	// ChartWindow is the number of episodes per learning curve point.
	ChartWindow int
}

func Default() Config {
	return Config{
		Episodes: 10_000,
		Epsilon:  td.DefaultEpsilon,
		Alpha:    td.DefaultLearningRate,
		LogEvery: 1_000,
		Addr:     "127.0.0.1:3000",
		LogLevel: "info",

		ChartWindow: 500,
	}
}

// Load reads the given dotenv files (".env" if none), then TICTACTD_* variables
// over Default. Missing dotenv files are ignored.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}

	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("loading %s: %w", f, err)
		}
	}

	cfg := Default()
	var err error
	set := func(name string, parse func(string) error) {
		v, ok := os.LookupEnv(envPrefix + name)
		if !ok || err != nil {
			return
		}
		if perr := parse(v); perr != nil {
			err = fmt.Errorf("%s%s=%q: %w", envPrefix, name, v, perr)
		}
	}

	set("EPISODES", func(v string) (e error) { cfg.Episodes, e = strconv.Atoi(v); return })
	set("EPSILON", func(v string) (e error) { cfg.Epsilon, e = strconv.ParseFloat(v, 64); return })
	set("ALPHA", func(v string) (e error) { cfg.Alpha, e = strconv.ParseFloat(v, 64); return })
	set("SEED", func(v string) (e error) { cfg.Seed, e = strconv.ParseUint(v, 10, 64); return })
	set("PROPAGATE_TIES", func(v string) (e error) { cfg.PropagateTies, e = strconv.ParseBool(v); return })
	set("LOG_EVERY", func(v string) (e error) { cfg.LogEvery, e = strconv.Atoi(v); return })
	set("LOG_JSON", func(v string) (e error) { cfg.LogJSON, e = strconv.ParseBool(v); return })
	set("ADDR", func(v string) error { cfg.Addr = v; return nil })
	set("LOG_LEVEL", func(v string) error { cfg.LogLevel = v; return nil })
	set("LOG_FILE", func(v string) error { cfg.LogFile = v; return nil })
	set("CSV", func(v string) error { cfg.CSVPath = v; return nil })
	set("CHART", func(v string) error { cfg.ChartPath = v; return nil })
	set("CHART_WINDOW", func(v string) (e error) { cfg.ChartWindow, e = strconv.Atoi(v); return })
	if err != nil {
		return Config{}, err
	}

	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.Episodes < 0 {
		return fmt.Errorf("episodes must not be negative, got %d", c.Episodes)
	}
	if c.Epsilon < 0 || c.Epsilon > 1 {
		return fmt.Errorf("epsilon must be within [0, 1], got %v", c.Epsilon)
	}
	if c.Alpha < 0 || c.Alpha > 1 {
		return fmt.Errorf("alpha must be within [0, 1], got %v", c.Alpha)
	}
	if c.LogEvery < 0 {
		return fmt.Errorf("log every must not be negative, got %d", c.LogEvery)
	}
	if c.ChartWindow <= 0 {
		return fmt.Errorf("chart window must be positive, got %d", c.ChartWindow)
	}

	return nil
}

// Rand returns an independent source for stream. Equal seeds give equal sequences.
func (c Config) Rand(stream uint64) *rand.Rand {
	seed := c.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}

	return rand.New(rand.NewPCG(seed, stream))
}
