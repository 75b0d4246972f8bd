package cli_test

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/edirooss/leaderboard/internal/cli"
	"github.com/edirooss/leaderboard/internal/dispatcher"
	"github.com/edirooss/leaderboard/internal/persist"
	"github.com/edirooss/leaderboard/internal/registry"
)

func newHarness(t *testing.T) (*registry.Registry, *dispatcher.Dispatcher, *persist.Saver) {
	t.Helper()
	dir := t.TempDir()
	reg, err := registry.Load(filepath.Join(dir, "boards.json"), dir, nil)
	require.NoError(t, err)
	d := dispatcher.New(reg, nil)
	saver := persist.New(reg, dir, nil)
	return reg, d, saver
}

func run(t *testing.T, reg *registry.Registry, d *dispatcher.Dispatcher, saver *persist.Saver, args ...string) (string, error) {
	t.Helper()
	root := cli.NewRootCommand(reg, d, saver, zap.NewNop())
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetIn(strings.NewReader(""))
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func TestBoardCreateSelectUpdateGet(t *testing.T) {
	reg, d, saver := newHarness(t)

	out, err := run(t, reg, d, saver, "board", "create", "main")
	require.NoError(t, err)
	require.Contains(t, out, "Created board")

	// Each invocation of run() builds a fresh root command, so the
	// "current board" selected by one 'board' call doesn't persist to the
	// next — every board-scoped call below passes --board explicitly.
	out, err = run(t, reg, d, saver, "update", "--board", "main", "1", "10")
	require.NoError(t, err)
	require.Contains(t, out, "Added player 1")

	out, err = run(t, reg, d, saver, "get", "--board", "main", "1")
	require.NoError(t, err)
	require.Contains(t, out, "has 10 points")
}

func TestUpdateWithoutBoardErrors(t *testing.T) {
	reg, d, saver := newHarness(t)
	_, err := run(t, reg, d, saver, "update", "1", "10")
	require.Error(t, err)
}

func TestSizeAndClear(t *testing.T) {
	reg, d, saver := newHarness(t)
	_, err := run(t, reg, d, saver, "board", "create", "main")
	require.NoError(t, err)
	_, err = run(t, reg, d, saver, "update", "--board", "main", "1", "10")
	require.NoError(t, err)

	out, err := run(t, reg, d, saver, "size", "--board", "main")
	require.NoError(t, err)
	require.Contains(t, out, "1 entries")

	root := cli.NewRootCommand(reg, d, saver, zap.NewNop())
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetIn(strings.NewReader("y\n"))
	root.SetArgs([]string{"clear", "--board", "main"})
	require.NoError(t, root.Execute())
	require.Contains(t, buf.String(), "Cleared.")

	b, ok := reg.Board("main")
	require.True(t, ok)
	require.Equal(t, 0, b.Len())
}

func TestClearDeclinedLeavesBoardUntouched(t *testing.T) {
	reg, d, saver := newHarness(t)
	_, err := run(t, reg, d, saver, "board", "create", "main")
	require.NoError(t, err)
	_, err = run(t, reg, d, saver, "update", "--board", "main", "1", "10")
	require.NoError(t, err)

	root := cli.NewRootCommand(reg, d, saver, zap.NewNop())
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetIn(strings.NewReader("n\n"))
	root.SetArgs([]string{"clear", "--board", "main"})
	require.NoError(t, root.Execute())
	require.Contains(t, buf.String(), "Canceled.")

	b, ok := reg.Board("main")
	require.True(t, ok)
	require.Equal(t, 1, b.Len())
}

func TestPopulateFillsBoard(t *testing.T) {
	reg, d, saver := newHarness(t)
	_, err := run(t, reg, d, saver, "board", "create", "main")
	require.NoError(t, err)

	// Board starts empty, so populate proceeds without a confirmation
	// prompt — mirroring cli.rs, which only asks for confirmation when
	// the board already holds data.
	_, err = run(t, reg, d, saver, "populate", "--board", "main", "5")
	require.NoError(t, err)

	b, ok := reg.Board("main")
	require.True(t, ok)
	require.Equal(t, 5, b.Len())
}

func TestKeyCreateDeleteChmod(t *testing.T) {
	reg, d, saver := newHarness(t)
	_, err := run(t, reg, d, saver, "board", "create", "main")
	require.NoError(t, err)

	out, err := run(t, reg, d, saver, "key", "create", "k1", "main", "--write")
	require.NoError(t, err)
	require.Contains(t, out, "write=true")

	kb, ok := reg.ResolveKey("k1")
	require.True(t, ok)
	require.True(t, kb.Write)

	_, err = run(t, reg, d, saver, "key", "chmod", "k1", "false")
	require.NoError(t, err)
	kb, ok = reg.ResolveKey("k1")
	require.True(t, ok)
	require.False(t, kb.Write)

	_, err = run(t, reg, d, saver, "key", "delete", "k1")
	require.NoError(t, err)
	_, ok = reg.ResolveKey("k1")
	require.False(t, ok)
}

func TestCapSetRejectsOverflow(t *testing.T) {
	reg, d, saver := newHarness(t)
	_, err := run(t, reg, d, saver, "board", "create", "main")
	require.NoError(t, err)
	_, err = run(t, reg, d, saver, "cap", "set", "--board", "main", "1")
	require.NoError(t, err)

	_, err = run(t, reg, d, saver, "update", "--board", "main", "1", "10")
	require.NoError(t, err)

	out, err := run(t, reg, d, saver, "update", "--board", "main", "2", "5")
	require.NoError(t, err)
	require.Contains(t, out, "board at capacity")
}

func TestTopListsRankedEntries(t *testing.T) {
	reg, d, saver := newHarness(t)
	_, err := run(t, reg, d, saver, "board", "create", "main")
	require.NoError(t, err)
	_, err = run(t, reg, d, saver, "update", "--board", "main", "1", "10")
	require.NoError(t, err)
	_, err = run(t, reg, d, saver, "update", "--board", "main", "2", "20")
	require.NoError(t, err)

	out, err := run(t, reg, d, saver, "top", "--board", "main", "2")
	require.NoError(t, err)
	require.Contains(t, out, "#1: 2")
	require.Contains(t, out, "#2: 1")
}

func TestREPLSetsBoardAcrossLines(t *testing.T) {
	reg, d, saver := newHarness(t)
	_, err := run(t, reg, d, saver, "board", "create", "main")
	require.NoError(t, err)

	in := strings.NewReader("board main\nupdate 1 10\nget 1\nexit\n")
	var out bytes.Buffer
	require.NoError(t, cli.RunREPL(reg, d, saver, zap.NewNop(), in, &out))
	require.Contains(t, out.String(), "has 10 points")
}
