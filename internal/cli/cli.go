// Package cli implements the administrative command-line surface over a
// Registry and Dispatcher: a spf13/cobra command tree mirroring
// original_source/src/cli.rs's REPL command set, plus board/key/cap
// administration the distilled spec.md names as Registry operations but
// never wires to an external surface.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/edirooss/leaderboard/internal/dispatcher"
	"github.com/edirooss/leaderboard/internal/persist"
	"github.com/edirooss/leaderboard/internal/registry"
)

// NewRootCommand builds the full leaderboard-cli command tree.
func NewRootCommand(reg *registry.Registry, d *dispatcher.Dispatcher, saver *persist.Saver, log *zap.Logger) *cobra.Command {
	if log == nil {
		log = zap.NewNop()
	}
	sess := &session{}

	root := &cobra.Command{
		Use:   "leaderboard-cli",
		Short: "Administer leaderboard boards, keys, and entries.",
	}
	root.PersistentFlags().String("board", "", "board to operate on (defaults to the last 'board <name>' selection)")

	resolveBoard := func(cmd *cobra.Command) (string, error) {
		name, _ := cmd.Flags().GetString("board")
		if name == "" {
			name = sess.board
		}
		if name == "" {
			return "", fmt.Errorf("no current board set, please set it with 'board <board_name>' or --board")
		}
		return name, nil
	}

	root.AddCommand(
		newUpdateCmd(d, resolveBoard),
		newRemoveCmd(d, resolveBoard),
		newGetCmd(d, resolveBoard),
		newRankCmd(d, resolveBoard),
		newSizeCmd(reg, resolveBoard),
		newClearCmd(reg, resolveBoard),
		newPopulateCmd(reg, resolveBoard),
		newTopCmd(d, resolveBoard),
		newBottomCmd(d, resolveBoard),
		newBeforeCmd(d, resolveBoard),
		newAfterCmd(d, resolveBoard),
		newAroundCmd(d, resolveBoard),
		newRangeCmd(d, resolveBoard),
		newBoardCmd(reg, sess),
		newBoardsCmd(reg),
		newKeyCmd(reg),
		newCapCmd(reg, resolveBoard),
		newSaveCmd(saver),
		newReplCmd(reg, d, saver, log),
	)
	return root
}

type boardResolver func(cmd *cobra.Command) (string, error)

func newUpdateCmd(d *dispatcher.Dispatcher, resolveBoard boardResolver) *cobra.Command {
	return &cobra.Command{
		Use:   "update <user_id> <points>",
		Short: "Update the specified user's points on the current board.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			boardName, err := resolveBoard(cmd)
			if err != nil {
				return err
			}
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid user_id: %w", err)
			}
			points, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid points: %w", err)
			}

			res, err := d.Update(dispatcher.Principal{Board: boardName, Write: true}, dispatcher.UpdateRequest{ID: id, Value: points})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch res.Code {
			case dispatcher.CodeNotable:
				fmt.Fprintf(out, "Added %d to have %v points.\n", id, points)
			case dispatcher.CodeNotFound:
				fmt.Fprintln(out, res.Message)
			default:
				fmt.Fprintf(out, "Updated %d to have %v points.\n", id, points)
			}
			return nil
		},
	}
}

func newRemoveCmd(d *dispatcher.Dispatcher, resolveBoard boardResolver) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <user_id>",
		Short: "Remove the specified user from the current board.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			boardName, err := resolveBoard(cmd)
			if err != nil {
				return err
			}
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid user_id: %w", err)
			}
			res, err := d.Remove(dispatcher.Principal{Board: boardName, Write: true}, dispatcher.RemoveRequest{ID: id})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Message)
			return nil
		},
	}
}

func newGetCmd(d *dispatcher.Dispatcher, resolveBoard boardResolver) *cobra.Command {
	return &cobra.Command{
		Use:   "get <user_id>",
		Short: "Get the number of points the specified user has on the current board.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			boardName, err := resolveBoard(cmd)
			if err != nil {
				return err
			}
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid user_id: %w", err)
			}
			res, err := d.Get(dispatcher.Principal{Board: boardName}, dispatcher.GetRequest{ID: id})
			if err != nil {
				return err
			}
			if res.Code == dispatcher.CodeNotFound {
				fmt.Fprintf(cmd.OutOrStdout(), "User %d is not on the board.\n", id)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "User %d has %v points.\n", id, res.Entry.Score)
			return nil
		},
	}
}

func newRankCmd(d *dispatcher.Dispatcher, resolveBoard boardResolver) *cobra.Command {
	return &cobra.Command{
		Use:   "rank <user_id>",
		Short: "Get the rank of the specified user on the current board.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			boardName, err := resolveBoard(cmd)
			if err != nil {
				return err
			}
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid user_id: %w", err)
			}
			res, err := d.Info(dispatcher.Principal{Board: boardName}, dispatcher.InfoRequest{ID: id})
			if err != nil {
				return err
			}
			if res.Code == dispatcher.CodeNotFound {
				fmt.Fprintf(cmd.OutOrStdout(), "User %d is not on the board.\n", id)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "User %d is in #%d on the board.\n", id, *res.Rank)
			return nil
		},
	}
}

func newSizeCmd(reg *registry.Registry, resolveBoard boardResolver) *cobra.Command {
	return &cobra.Command{
		Use:   "size",
		Short: "Return the number of entries on the current board.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			boardName, err := resolveBoard(cmd)
			if err != nil {
				return err
			}
			b, ok := reg.Board(boardName)
			if !ok {
				return fmt.Errorf("unknown board %q", boardName)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Current board has %d entries.\n", b.Len())
			return nil
		},
	}
}

func newClearCmd(reg *registry.Registry, resolveBoard boardResolver) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Entirely clear the current board, erasing all data.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			boardName, err := resolveBoard(cmd)
			if err != nil {
				return err
			}
			b, ok := reg.Board(boardName)
			if !ok {
				return fmt.Errorf("unknown board %q", boardName)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Are you sure you want to clear this board and erase all associated data?")
			if !confirm(cmd.InOrStdin(), out) {
				return nil
			}
			fmt.Fprintln(out, "Clearing data...")
			b.Clear()
			fmt.Fprintln(out, "Cleared.")
			return nil
		},
	}
}

func newPopulateCmd(reg *registry.Registry, resolveBoard boardResolver) *cobra.Command {
	return &cobra.Command{
		Use:   "populate <count>",
		Short: "Fill the current board with <count> dummy entries. Overwrites ALL existing data.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			boardName, err := resolveBoard(cmd)
			if err != nil {
				return err
			}
			count, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid count: %w", err)
			}
			b, ok := reg.Board(boardName)
			if !ok {
				return fmt.Errorf("unknown board %q", boardName)
			}

			out := cmd.OutOrStdout()
			empty := b.Len() == 0
			if !empty {
				fmt.Fprintf(out, "Are you sure you want to populate this board with %d dummy entries? This will clear all existing data on the current board.\n", count)
			}
			if !empty && !confirm(cmd.InOrStdin(), out) {
				return nil
			}

			fmt.Fprintln(out, "Clearing data...")
			b.Clear()
			fmt.Fprintln(out, "Populating...")
			for i := uint64(0); i < count; i++ {
				b.Update(int64(i+1), float64(i), nil)
			}
			return nil
		},
	}
}

func newBoardCmd(reg *registry.Registry, sess *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board [board_name]",
		Short: "Show or set the current board.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				if !sess.has() {
					return fmt.Errorf("no current board set, please set it with 'board <board_name>'")
				}
				fmt.Fprintf(out, "Current board: %s.\n", sess.board)
				return nil
			}
			name := args[0]
			if _, ok := reg.Board(name); !ok {
				fmt.Fprintf(out, "Invalid board '%s', does not exist.\n", name)
				return nil
			}
			sess.board = name
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "create <board_name>",
		Short: "Create a new, empty board.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := reg.CreateBoard(args[0])
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintf(cmd.OutOrStdout(), "Board '%s' already exists.\n", args[0])
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created board '%s'.\n", args[0])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <board_name>",
		Short: "Delete a board and every key bound to it.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Are you sure you want to delete board '%s' and all its data?\n", args[0])
			if !confirm(cmd.InOrStdin(), out) {
				return nil
			}
			ok, err := reg.DeleteBoard(args[0])
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintf(out, "Board '%s' does not exist.\n", args[0])
				return nil
			}
			fmt.Fprintf(out, "Deleted board '%s'.\n", args[0])
			return nil
		},
	})

	return cmd
}

func newBoardsCmd(reg *registry.Registry) *cobra.Command {
	return &cobra.Command{
		Use:   "boards",
		Short: "List every registered board.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names := make([]string, 0)
			for name := range reg.Boards() {
				names = append(names, name)
			}
			sort.Strings(names)
			out := cmd.OutOrStdout()
			for i, name := range names {
				fmt.Fprintf(out, "%d: %s\n", i, name)
			}
			return nil
		},
	}
}

func newKeyCmd(reg *registry.Registry) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Manage API keys.",
	}

	var write bool
	createCmd := &cobra.Command{
		Use:   "create <api_key> <board_name>",
		Short: "Bind a new API key to a board.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := reg.CreateKey(args[0], args[1], write)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Key already exists.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created key bound to board '%s' (write=%v).\n", args[1], write)
			return nil
		},
	}
	createCmd.Flags().BoolVar(&write, "write", false, "grant write access")
	cmd.AddCommand(createCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <api_key>",
		Short: "Revoke an API key.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := reg.DeleteKey(args[0])
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Key does not exist.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Key deleted.")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "chmod <api_key> <true|false>",
		Short: "Change an API key's write permission.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := strconv.ParseBool(args[1])
			if err != nil {
				return fmt.Errorf("invalid write flag %q: %w", args[1], err)
			}
			ok, err := reg.SetKeyWrite(args[0], w)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Key does not exist.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Key write permission set to %v.\n", w)
			return nil
		},
	})

	return cmd
}

func newCapCmd(reg *registry.Registry, resolveBoard boardResolver) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cap",
		Short: "Manage the current board's size cap.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <n>",
		Short: "Set the current board's size cap.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			boardName, err := resolveBoard(cmd)
			if err != nil {
				return err
			}
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid cap: %w", err)
			}
			ok, err := reg.SetBoardCap(boardName, n)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("unknown board %q", boardName)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cap set to %d.\n", n)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove",
		Short: "Lift the current board's size cap.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			boardName, err := resolveBoard(cmd)
			if err != nil {
				return err
			}
			ok, err := reg.RemoveBoardCap(boardName)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("unknown board %q", boardName)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Cap removed.")
			return nil
		},
	})

	return cmd
}

func newSaveCmd(saver *persist.Saver) *cobra.Command {
	return &cobra.Command{
		Use:   "save",
		Short: "Save every board to disk.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := saver.SaveAll(context.Background()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All boards saved.")
			return nil
		},
	}
}

func confirm(in io.Reader, out io.Writer) bool {
	fmt.Fprintln(out, "Type 'y' to confirm action, anything else to cancel.")
	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		fmt.Fprintln(out, "Something went wrong reading input, canceling.")
		return false
	}
	if scanner.Text() == "y" {
		return true
	}
	fmt.Fprintln(out, "Canceled.")
	return false
}
