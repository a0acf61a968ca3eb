package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/zintix-labs/blocklab"
	"github.com/zintix-labs/blocklab/server/logger"
)

// 以錄好的盤面回放 capture → decide → act 迴圈，每一步只寫日誌：
//
//	go run ./cmd/solve -game block1010 -snapshots testdata/session.yaml.zst
func main() {
	if err := run(os.Args[1:], os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("solve", flag.ContinueOnError)
	game := fs.String("game", "block1010", "game name; its driver limits and piece names apply")
	path := fs.String("snapshots", "", "snapshot file (.yaml/.json, optionally .zst compressed)")
	rounds := fs.Int("rounds", 0, "rounds to run (0: until the snapshots run out)")
	logMode := fs.String("log-mode", "dev", "log mode: dev|prod|silence")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *path == "" {
		return fmt.Errorf("-snapshots is required")
	}
	mode, err := logger.ParseMode(*logMode)
	if err != nil {
		return err
	}
	log := logger.NewWriter(w, mode)

	lab, err := blocklab.NewDefault()
	if err != nil {
		return err
	}
	lookup, err := lab.ShapeLookup(*game)
	if err != nil {
		return err
	}
	dir, name := filepath.Split(*path)
	if dir == "" {
		dir = "."
	}
	capt, err := blocklab.OpenFileCapturer(os.DirFS(dir), name, lookup)
	if err != nil {
		return err
	}
	d, err := lab.NewDriver(*game, capt, &blocklab.LogExecutor{Log: log}, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	sum, err := d.Run(ctx, *rounds)
	if err != nil {
		return err
	}
	log.Info("session done",
		"rounds", sum.Rounds,
		"moves", sum.Moves,
		"lines", sum.Lines,
		"cleared", sum.Cleared,
		"stale", sum.Stale,
		"skipped", sum.Skipped,
	)
	return nil
}
