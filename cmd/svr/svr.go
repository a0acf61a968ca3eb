// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/zintix-labs/blocklab"
	"github.com/zintix-labs/blocklab/configs"
	"github.com/zintix-labs/blocklab/sdk/core"
	"github.com/zintix-labs/blocklab/server"
	"github.com/zintix-labs/blocklab/server/logger"
	"github.com/zintix-labs/blocklab/server/svrcfg"
)

// blocklab HTTP 服務：go run ./cmd/svr -addr :5808 -pool 4 -log-mode prod
func main() {
	sCfg, closeLog, err := loadConfigFromFlags()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	err = server.Run(sCfg)
	closeLog()
	if err != nil {
		os.Exit(1)
	}
}

type config struct {
	Addr         string
	LogMode      string
	PoolSize     int
	MaxGames     int
	MaxWorkers   int
	PlayTimeout  time.Duration
	MaxBoardSide int
	MaxTray      int
	ConfigDir    string
}

func loadConfigFromFlags() (*svrcfg.SvrCfg, func(), error) {
	cfg := new(config)
	flag.StringVar(&cfg.Addr, "addr", ":5808", "listen address")
	flag.StringVar(&cfg.LogMode, "log-mode", "dev", "log mode: dev|prod|silence")
	flag.IntVar(&cfg.PoolSize, "pool", 3, "machines per game")
	flag.IntVar(&cfg.MaxGames, "max-games", svrcfg.DefaultMaxGames, "max games*workers per /v1/sim request")
	flag.IntVar(&cfg.MaxWorkers, "max-workers", 0, "max workers per /v1/sim request (0: number of CPUs)")
	flag.DurationVar(&cfg.PlayTimeout, "play-timeout", svrcfg.DefaultTimeout, "time limit per /v1/play, /v1/decide and /v1/solve request")
	flag.IntVar(&cfg.MaxBoardSide, "max-board-side", svrcfg.DefaultMaxBoardSide, "max rows/cols of an ad-hoc board on /v1/decide and /v1/solve")
	flag.IntVar(&cfg.MaxTray, "max-tray", svrcfg.DefaultMaxTray, "max pieces per tray on /v1/decide and /v1/solve")
	flag.StringVar(&cfg.ConfigDir, "configs", "", "extra directory of game settings (*.yaml/*.yml/*.json)")
	flag.Parse()

	mode, err := logger.ParseMode(cfg.LogMode)
	if err != nil {
		return nil, nil, err
	}
	log, ah := logger.NewAsync(4096, mode)

	lab, err := newLab(cfg.ConfigDir)
	if err != nil {
		ah.Close()
		return nil, nil, err
	}
	return &svrcfg.SvrCfg{
		Log:          log,
		Addr:         cfg.Addr,
		PoolSize:     cfg.PoolSize,
		MaxGames:     cfg.MaxGames,
		MaxWorkers:   cfg.MaxWorkers,
		PlayTimeout:  cfg.PlayTimeout,
		MaxBoardSide: cfg.MaxBoardSide,
		MaxTray:      cfg.MaxTray,
		Blocklab:     lab,
	}, ah.Close, nil
}

// newLab 內建設定之外，可以再掛一個目錄；名稱重複時回錯
func newLab(dir string) (*blocklab.Blocklab, error) {
	if dir == "" {
		return blocklab.NewDefault()
	}
	return blocklab.New(core.Default(), blocklab.Configs(configs.FS, os.DirFS(dir)))
}
