package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/edirooss/leaderboard/internal/dispatcher"
)

func printRanked(cmd *cobra.Command, entries []dispatcher.RankedEntry) {
	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(out, "No entries.")
		return
	}
	for _, re := range entries {
		fmt.Fprintf(out, "#%d: %d — %v points\n", re.Rank, re.Entry.Key, re.Entry.Score)
	}
}

func newTopCmd(d *dispatcher.Dispatcher, resolveBoard boardResolver) *cobra.Command {
	return &cobra.Command{
		Use:   "top <count>",
		Short: "List the top <count> entries, best first.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			boardName, err := resolveBoard(cmd)
			if err != nil {
				return err
			}
			count, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid count: %w", err)
			}
			entries, err := d.Top(dispatcher.Principal{Board: boardName}, dispatcher.CountRequest{Count: count})
			if err != nil {
				return err
			}
			printRanked(cmd, entries)
			return nil
		},
	}
}

func newBottomCmd(d *dispatcher.Dispatcher, resolveBoard boardResolver) *cobra.Command {
	return &cobra.Command{
		Use:   "bottom <count>",
		Short: "List the bottom <count> entries, worst first.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			boardName, err := resolveBoard(cmd)
			if err != nil {
				return err
			}
			count, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid count: %w", err)
			}
			entries, err := d.Bottom(dispatcher.Principal{Board: boardName}, dispatcher.CountRequest{Count: count})
			if err != nil {
				return err
			}
			printRanked(cmd, entries)
			return nil
		},
	}
}

func newAfterCmd(d *dispatcher.Dispatcher, resolveBoard boardResolver) *cobra.Command {
	return &cobra.Command{
		Use:   "after <user_id> <count>",
		Short: "List up to <count> worse-ranked neighbors of <user_id>, nearest first.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			boardName, err := resolveBoard(cmd)
			if err != nil {
				return err
			}
			id, count, err := parseIDCount(args)
			if err != nil {
				return err
			}
			res, err := d.After(dispatcher.Principal{Board: boardName}, dispatcher.NeighborRequest{ID: id, Count: count})
			if err != nil {
				return err
			}
			if res.Code == dispatcher.CodeNotFound {
				fmt.Fprintf(cmd.OutOrStdout(), "User %d is not on the board.\n", id)
				return nil
			}
			printRanked(cmd, res.Entries)
			return nil
		},
	}
}

func newBeforeCmd(d *dispatcher.Dispatcher, resolveBoard boardResolver) *cobra.Command {
	return &cobra.Command{
		Use:   "before <user_id> <count>",
		Short: "List up to <count> better-ranked neighbors of <user_id>, nearest first.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			boardName, err := resolveBoard(cmd)
			if err != nil {
				return err
			}
			id, count, err := parseIDCount(args)
			if err != nil {
				return err
			}
			res, err := d.Before(dispatcher.Principal{Board: boardName}, dispatcher.NeighborRequest{ID: id, Count: count})
			if err != nil {
				return err
			}
			if res.Code == dispatcher.CodeNotFound {
				fmt.Fprintf(cmd.OutOrStdout(), "User %d is not on the board.\n", id)
				return nil
			}
			printRanked(cmd, res.Entries)
			return nil
		},
	}
}

func newAroundCmd(d *dispatcher.Dispatcher, resolveBoard boardResolver) *cobra.Command {
	return &cobra.Command{
		Use:   "around <user_id> <before> <after>",
		Short: "List <before> better-ranked entries, <user_id> itself, and <after> worse-ranked entries.",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			boardName, err := resolveBoard(cmd)
			if err != nil {
				return err
			}
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid user_id: %w", err)
			}
			before, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid before: %w", err)
			}
			after, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid after: %w", err)
			}
			res, err := d.Around(dispatcher.Principal{Board: boardName}, dispatcher.AroundRequest{ID: id, Before: before, After: after})
			if err != nil {
				return err
			}
			if res.Code == dispatcher.CodeNotFound {
				fmt.Fprintf(cmd.OutOrStdout(), "User %d is not on the board.\n", id)
				return nil
			}
			printRanked(cmd, res.Entries)
			return nil
		},
	}
}

func newRangeCmd(d *dispatcher.Dispatcher, resolveBoard boardResolver) *cobra.Command {
	return &cobra.Command{
		Use:   "range <start_rank> <end_rank>",
		Short: "List the entries whose rank falls in [start_rank, end_rank].",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			boardName, err := resolveBoard(cmd)
			if err != nil {
				return err
			}
			start, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid start_rank: %w", err)
			}
			end, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid end_rank: %w", err)
			}
			entries, err := d.Range(dispatcher.Principal{Board: boardName}, dispatcher.RangeRequest{Start: start, End: end})
			if err != nil {
				return err
			}
			printRanked(cmd, entries)
			return nil
		},
	}
}

func parseIDCount(args []string) (id int64, count int, err error) {
	id, err = strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid user_id: %w", err)
	}
	count, err = strconv.Atoi(args[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid count: %w", err)
	}
	return id, count, nil
}
