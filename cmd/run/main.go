package main

import (
	"fmt"
	"os"

	"github.com/zintix-labs/blocklab/sdk/perf"
)

// 自我對弈模擬：go run ./cmd/run -game block1010 -games 10000 -workers 8
func main() {
	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if err := perf.Run(func() error { return execute(cfg, os.Stdout) }, cfg.pprofmode, ""); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
