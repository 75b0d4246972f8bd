package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/edirooss/leaderboard/internal/dispatcher"
	"github.com/edirooss/leaderboard/internal/persist"
	"github.com/edirooss/leaderboard/internal/registry"
)

// newReplCmd adds the interactive loop exec_cli runs in
// original_source/src/cli.rs: read a line, split it on whitespace, and
// re-parse it through the same command tree each iteration, rather than
// building a single fixed argv per process invocation.
func newReplCmd(reg *registry.Registry, d *dispatcher.Dispatcher, saver *persist.Saver, log *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:    "repl",
		Short:  "Start an interactive session, reading commands from stdin until EOF or 'exit'.",
		Args:   cobra.NoArgs,
		Hidden: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunREPL(reg, d, saver, log, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

// RunREPL reads whitespace-split command lines from in until EOF, 'exit',
// or 'quit', re-parsing each one through the same root command so the
// "current board" a 'board <name>' line sets carries over to the lines
// that follow it, the way cli.rs's current_user mutex does.
func RunREPL(reg *registry.Registry, d *dispatcher.Dispatcher, saver *persist.Saver, log *zap.Logger, in io.Reader, out io.Writer) error {
	root := NewRootCommand(reg, d, saver, log)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(out)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return nil
		}

		root.SetArgs(strings.Fields(line))
		if err := root.Execute(); err != nil {
			fmt.Fprintln(out, err)
		}
	}
}
