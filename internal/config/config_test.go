package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults without env", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
		require.NoError(t, err)
		require.Equal(t, Default(), cfg)
	})

	t.Run("environment overrides defaults", func(t *testing.T) {
		t.Setenv("TICTACTD_EPISODES", "250")
		t.Setenv("TICTACTD_EPSILON", "0.2")
		t.Setenv("TICTACTD_SEED", "99")
		t.Setenv("TICTACTD_PROPAGATE_TIES", "true")
		t.Setenv("TICTACTD_ADDR", ":8080")

		cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
		require.NoError(t, err)
		require.Equal(t, 250, cfg.Episodes)
		require.Equal(t, 0.2, cfg.Epsilon)
		require.Equal(t, uint64(99), cfg.Seed)
		require.True(t, cfg.PropagateTies)
		require.Equal(t, ":8080", cfg.Addr)
	})

	t.Run("dotenv file is read", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "test.env")
		require.NoError(t, os.WriteFile(path, []byte("TICTACTD_ALPHA=0.3\n"), 0o600))
		t.Cleanup(func() { os.Unsetenv("TICTACTD_ALPHA") })

		cfg, err := Load(path)
		require.NoError(t, err)
		require.Equal(t, 0.3, cfg.Alpha)
	})

	t.Run("bad values are reported", func(t *testing.T) {
		t.Setenv("TICTACTD_EPISODES", "lots")
		_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
		require.ErrorContains(t, err, "TICTACTD_EPISODES")
	})

	t.Run("out of range values fail validation", func(t *testing.T) {
		t.Setenv("TICTACTD_EPSILON", "1.5")
		_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
		require.ErrorContains(t, err, "epsilon")
	})
}

func TestValidate(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		require.NoError(t, Default().Validate())
	})

	t.Run("chart window must be positive", func(t *testing.T) {
		for _, w := range []int{0, -5} {
			cfg := Default()
			cfg.ChartWindow = w
			require.ErrorContains(t, cfg.Validate(), "chart window")
		}
	})

	t.Run("chart window from env", func(t *testing.T) {
		t.Setenv("TICTACTD_CHART_WINDOW", "0")
		_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
		require.ErrorContains(t, err, "chart window")
	})
}

func TestRand(t *testing.T) {
	cfg := Default()
	cfg.Seed = 5

	a, b := cfg.Rand(1), cfg.Rand(1)
	require.Equal(t, a.Uint64(), b.Uint64(), "Same seed and stream should repeat")
	require.NotEqual(t, cfg.Rand(1).Uint64(), cfg.Rand(2).Uint64())
}
