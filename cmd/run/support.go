package main

import (
	"crypto/rand"
	"flag"
	"io"
	"math"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zintix-labs/blocklab"
	"github.com/zintix-labs/blocklab/errs"
	"github.com/zintix-labs/blocklab/stats"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type config struct {
	game      string
	cfgPath   string
	games     int
	maxTrays  int
	workers   int
	seed      int64
	out       string
	progress  bool
	pprofmode string
}

func parseFlags(args []string) (*config, error) {
	cfg := new(config)
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.StringVar(&cfg.game, "game", "block1010", "game name in the embedded catalog")
	fs.StringVar(&cfg.cfgPath, "cfg", "", "game setting file (.yaml/.yml/.json); overrides -game")
	fs.IntVar(&cfg.games, "games", 10000, "games per worker")
	fs.IntVar(&cfg.maxTrays, "trays", blocklab.DefaultMaxTrays, "max trays per game")
	fs.IntVar(&cfg.workers, "workers", 1, "number of workers")
	fs.Int64Var(&cfg.seed, "seed", -1, "int64 seed; < 0 picks a random seed")
	fs.StringVar(&cfg.out, "out", "table", "report format: table|json|yaml")
	fs.BoolVar(&cfg.progress, "progress", true, "show progress bar")
	fs.StringVar(&cfg.pprofmode, "p", "", "pprof: '', cpu, heap, allocs")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := cfg.valid(); err != nil {
		return nil, err
	}
	if _, err := stats.RenderByName(cfg.out, 0); err != nil {
		return nil, err
	}
	if cfg.seed < 0 {
		seed, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
		if err != nil {
			return nil, errs.Wrap(err, "new crypto seed")
		}
		cfg.seed = seed.Int64()
	}
	return cfg, nil
}

func (cfg *config) valid() error {
	if cfg.workers < 1 {
		return errs.NewWarn("value err : workers must > 0")
	}
	if cfg.games < 1 {
		return errs.NewWarn("value err : games must > 0")
	}
	if cfg.maxTrays < 1 || cfg.maxTrays > blocklab.DefaultMaxTrays {
		return errs.Warnf("value err : trays must be between 1 and %d", blocklab.DefaultMaxTrays)
	}
	return nil
}

// newSimulator -cfg 有值時讀設定檔，否則用內建目錄
func (cfg *config) newSimulator(lab *blocklab.Blocklab) (*blocklab.Simulator, error) {
	if cfg.cfgPath == "" {
		return lab.NewSimulatorWithSeed(cfg.game, cfg.seed)
	}
	raw, err := os.ReadFile(cfg.cfgPath)
	if err != nil {
		return nil, errs.Wrap(err, "read game setting")
	}
	if strings.EqualFold(filepath.Ext(cfg.cfgPath), ".json") {
		return lab.NewSimulatorByJSON(raw, cfg.seed)
	}
	return lab.NewSimulatorByYAML(raw, cfg.seed)
}

func execute(cfg *config, w io.Writer) error {
	lab, err := blocklab.NewDefault()
	if err != nil {
		return err
	}
	s, err := cfg.newSimulator(lab)
	if err != nil {
		return err
	}

	green, reset := "\033[1;32m", "\033[0m"
	p := message.NewPrinter(language.English)
	if cfg.out == "table" || cfg.out == "" {
		p.Fprintf(w, "%s[GAME:%s] [WORKERS:%d] [GAMES:%d] [SEED:%d]%s\n",
			green, s.GameName, cfg.workers, cfg.games*cfg.workers, cfg.seed, reset)
	}

	var (
		st   *stats.StatReport
		used time.Duration
	)
	if cfg.workers == 1 {
		st, used, err = s.Sim(cfg.games, cfg.maxTrays, cfg.progress)
	} else {
		st, used, err = s.SimMP(cfg.games, cfg.maxTrays, cfg.workers, cfg.progress)
	}
	if err != nil {
		return err
	}
	render, err := stats.RenderByName(cfg.out, used)
	if err != nil {
		return err
	}
	return st.WriteWith(w, render)
}
