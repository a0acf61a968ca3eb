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

// Package svrcfg 伺服器組裝所需的全部依賴；不讀檔也不讀環境變數，由呼叫端明確注入。
package svrcfg

import (
	"log/slog"
	"runtime"
	"time"

	"github.com/zintix-labs/blocklab"
	"github.com/zintix-labs/blocklab/errs"
	"github.com/zintix-labs/blocklab/server/logger"
)

const (
	MaxPoolSize     = 64
	DefaultMaxGames = 100000
	MaxSimWorkers   = 64
	DefaultTimeout  = 5 * time.Second

	DefaultMaxBoardSide = 32
	DefaultMaxTray      = 16
)

// SvrCfg
//
//   - Log: 為 nil 時用 dev 模式的非同步 logger
//   - Addr: 監聽位址，空字串用 netsvr 預設
//   - PoolSize: 每款遊戲的機台池大小，夾在 [1, MaxPoolSize]
//   - MaxGames: /v1/sim 單次請求的總局數上限（games*workers）
//   - MaxWorkers: /v1/sim 的 workers 上限；未設定時用 CPU 數，最多 MaxSimWorkers
//   - PlayTimeout: /v1/play、/v1/decide、/v1/solve 每個請求的處理上限
//   - MaxBoardSide: 未指定 game 時，decide/solve 盤面的列數與欄數上限
//   - MaxTray: decide/solve 托盤方塊數上限
//   - Blocklab: 必填
type SvrCfg struct {
	Log          *slog.Logger
	Addr         string
	PoolSize     int
	MaxGames     int
	MaxWorkers   int
	PlayTimeout  time.Duration
	MaxBoardSide int
	MaxTray      int
	Blocklab     *blocklab.Blocklab
}

// Valid 檢查必要依賴並補上預設值
func (sc *SvrCfg) Valid() error {
	if sc.Log != nil {
		if ah, ok := sc.Log.Handler().(*logger.AsyncHandler); ok && !ah.Ready() {
			return errs.NewFatal("nil default log handler: async handler is nil")
		}
	} else {
		sc.Log, _ = logger.NewAsync(1024, logger.ModeDev)
	}
	sc.PoolSize = min(MaxPoolSize, max(1, sc.PoolSize))
	if sc.MaxGames <= 0 {
		sc.MaxGames = DefaultMaxGames
	}
	if sc.MaxWorkers <= 0 {
		sc.MaxWorkers = runtime.NumCPU()
	}
	sc.MaxWorkers = min(MaxSimWorkers, sc.MaxWorkers)
	if sc.PlayTimeout <= 0 {
		sc.PlayTimeout = DefaultTimeout
	}
	if sc.MaxBoardSide <= 0 {
		sc.MaxBoardSide = DefaultMaxBoardSide
	}
	if sc.MaxTray <= 0 {
		sc.MaxTray = DefaultMaxTray
	}
	if sc.Blocklab == nil {
		return errs.NewFatal("blocklab is required")
	}
	return nil
}
