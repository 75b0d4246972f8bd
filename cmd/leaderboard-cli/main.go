package main

import (
	"flag"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/edirooss/leaderboard/internal/cli"
	"github.com/edirooss/leaderboard/internal/dispatcher"
	"github.com/edirooss/leaderboard/internal/persist"
	"github.com/edirooss/leaderboard/internal/registry"
)

func main() {
	dataDir := flag.String("data", "data", "directory holding boards.json and per-board save files")
	flag.Parse()

	log := zap.NewNop()

	if err := os.MkdirAll(*dataDir, 0o755); err != nil {
		fatal(err)
	}

	reg, err := registry.Load(filepath.Join(*dataDir, "boards.json"), *dataDir, log)
	if err != nil {
		fatal(err)
	}

	d := dispatcher.New(reg, log)
	saver := persist.New(reg, *dataDir, log)

	if len(flag.Args()) == 0 {
		if err := cli.RunREPL(reg, d, saver, log, os.Stdin, os.Stdout); err != nil {
			fatal(err)
		}
		return
	}

	root := cli.NewRootCommand(reg, d, saver, log)
	root.SetArgs(flag.Args())
	if err := root.Execute(); err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	os.Stderr.WriteString(err.Error() + "\n")
	os.Exit(1)
}
