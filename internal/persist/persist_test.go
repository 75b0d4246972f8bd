package persist_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/edirooss/leaderboard/internal/board"
	"github.com/edirooss/leaderboard/internal/persist"
	"github.com/edirooss/leaderboard/internal/registry"
)

func TestSaveAndLoadBoardRoundTrip(t *testing.T) {
	dir := t.TempDir()
	b := board.New()
	clock := func() float64 { return 1 }
	b.Update(1, 100, clock)
	b.Update(2, 200, clock)
	b.Update(3, 50, clock)

	path := filepath.Join(dir, "main.board")
	require.NoError(t, persist.SaveBoard(b, path))

	_, err := os.Stat(path)
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "main_saving.part"))
	require.True(t, os.IsNotExist(err), "temp file should not survive a successful save")

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	loaded, err := persist.LoadBoard(f)
	require.NoError(t, err)
	require.Equal(t, 3, loaded.Len())

	rank, ok := loaded.RankOf(2)
	require.True(t, ok)
	require.Equal(t, 1, rank)
}

func TestSaverSaveAllWritesEveryBoard(t *testing.T) {
	dir := t.TempDir()
	journalPath := filepath.Join(dir, "boards.json")

	reg, err := registry.Load(journalPath, dir, nil)
	require.NoError(t, err)

	ok, err := reg.CreateBoard("alpha")
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = reg.CreateBoard("beta")
	require.NoError(t, err)
	require.True(t, ok)

	alpha, _ := reg.Board("alpha")
	alpha.Update(1, 10, func() float64 { return 1 })

	s := persist.New(reg, dir, nil)
	require.NoError(t, s.SaveAll(context.Background()))

	_, err = os.Stat(filepath.Join(dir, "alpha.board"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "beta.board"))
	require.NoError(t, err)
}
