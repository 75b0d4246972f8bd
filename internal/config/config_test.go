package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/edirooss/leaderboard/internal/config"
)

func TestLoadSeedsDefaultsWhenMissing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, config.Default(), cfg)

	_, statErr := os.Stat(path)
	require.NoError(t, statErr)
}

func TestLoadReadsExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"port": 9090, "save_interval": 60}`), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, 9090, cfg.Port)
	require.Equal(t, 60, cfg.SaveIntervalSecs)
}

func TestSaveIntervalAsDuration(t *testing.T) {
	cfg := config.Config{SaveIntervalSecs: 30}
	require.Equal(t, 30_000_000_000, int(cfg.SaveInterval()))
}
