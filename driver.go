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

package blocklab

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/zintix-labs/blocklab/corefmt"
	"github.com/zintix-labs/blocklab/errs"
	"github.com/zintix-labs/blocklab/sdk/grid"
	"github.com/zintix-labs/blocklab/sdk/search"
	"github.com/zintix-labs/blocklab/spec"
)

var (
	// ErrCaptureExhausted 擷取重試次數用盡
	ErrCaptureExhausted = errs.NewWarn("capture retries exhausted")
	// ErrTrayTooLarge 偵測到的托盤超過 max_tray，視為誤判並重新擷取
	ErrTrayTooLarge = errs.NewWarn("detected tray larger than max_tray")
)

// Snapshot 一次擷取的結果：盤面加上托盤。
// Piece.Source 是擷取端自訂的來源標記（例如托盤槽位），driver 不解讀，原樣放回 Move。
type Snapshot struct {
	Board grid.Board
	Tray  []search.Piece
}

// Move 交給手勢層執行的一步
type Move struct {
	Round   int          // 第幾輪（從 1 開始）
	Step    int          // 本輪第幾步（從 0 開始）
	Source  int          // 方塊的來源標記
	Name    string       // 方塊名稱（可能為空）
	Shape   grid.Shape   // 方塊形狀
	Pos     grid.Pos     // 目標位置（shape 左上角）
	Score   int          // 放置後的完整線數
	Cleared grid.Cleared // 預期消除的列/欄
	Board   grid.Board   // 預期的盤面（放置並消行後）
	Stale   int          // 盤面連續未變化的輪數；手勢層可據此微調落點
}

// Capturer 提供盤面與托盤（影像辨識、檔案回放等）
type Capturer interface {
	Capture(ctx context.Context) (Snapshot, error)
}

// Executor 一次執行一步（手勢合成、記錄等）
type Executor interface {
	Execute(ctx context.Context, mv Move) error
}

// CapturerFunc 讓一般函數滿足 Capturer
type CapturerFunc func(ctx context.Context) (Snapshot, error)

func (f CapturerFunc) Capture(ctx context.Context) (Snapshot, error) { return f(ctx) }

// ExecutorFunc 讓一般函數滿足 Executor
type ExecutorFunc func(ctx context.Context, mv Move) error

func (f ExecutorFunc) Execute(ctx context.Context, mv Move) error { return f(ctx, mv) }

// DriverConfig 實機迴圈的限制
type DriverConfig struct {
	MaxCaptureRetries int           // 失敗後最多再試幾次（總嘗試次數 = MaxCaptureRetries+1）
	RetryDelay        time.Duration // 第 n 次嘗試前等待 RetryDelay*(n/5)
	MaxTray           int           // 托盤上限；0 表示不檢查
	MaxStale          int           // 未變化的第一輪照常重送，之後最多再微調重送 MaxStale 輪，再之後不送手勢；0 表示不限
}

// DriverConfigFrom 由遊戲設定取出 driver 參數
func DriverConfigFrom(gs *spec.GameSetting) DriverConfig {
	return DriverConfig{
		MaxCaptureRetries: gs.Driver.MaxCaptureRetries,
		RetryDelay:        gs.Driver.RetryDelay(),
		MaxTray:           gs.MaxTray,
		MaxStale:          gs.Driver.MaxStale,
	}
}

// RoundReport 一輪的結果
type RoundReport struct {
	Round     int
	Attempts  int            // 本輪擷取嘗試次數
	Stale     bool           // 擷取到的盤面與上一輪相同
	StaleRun  int            // 連續相同的輪數
	Skipped   bool           // StaleRun 超過上限，本輪沒有送出手勢
	Moves     []Move
	Abandoned []search.Piece // 放不下的方塊
	Board     grid.Board     // 本輪結束時預期的盤面
	Lines     int
	Cleared   int
}

// RunSummary Run 的累計
type RunSummary struct {
	Rounds  int
	Moves   int
	Lines   int
	Cleared int
	Stale   int
	Skipped int
}

// Driver capture → decide → act 迴圈。
//
// Driver 本身不含任何裝置程式碼；擷取與執行都透過介面注入。
// 不是 goroutine-safe：一個 Driver 對應一個實機工作階段。
type Driver struct {
	cfg   DriverConfig
	capr  Capturer
	exec  Executor
	log   *slog.Logger
	sleep func(ctx context.Context, d time.Duration) error

	round   int
	last    grid.Board
	hasLast bool
	stale   int
}

// NewDriver 建立 Driver；log 為 nil 時丟棄日誌
func NewDriver(cfg DriverConfig, c Capturer, e Executor, log *slog.Logger) (*Driver, error) {
	if c == nil || e == nil {
		return nil, errs.NewFatal("driver: capturer and executor required")
	}
	if cfg.MaxCaptureRetries < 0 || cfg.RetryDelay < 0 || cfg.MaxTray < 0 || cfg.MaxStale < 0 {
		return nil, errs.NewFatal(fmt.Sprintf("driver: negative limits %+v", cfg))
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Driver{cfg: cfg, capr: c, exec: e, log: log, sleep: sleepCtx}, nil
}

// Round 跑一輪：擷取（有上限的重試）→ 依序決策並執行，直到托盤用完或沒有方塊放得下。
//
// 擷取端回傳 io.EOF 代表沒有更多輸入，Round 直接把 io.EOF 往上傳，不重試。
func (d *Driver) Round(ctx context.Context) (RoundReport, error) {
	snap, attempts, err := d.capture(ctx)
	if err != nil {
		return RoundReport{Attempts: attempts}, err
	}
	d.round++
	rep := RoundReport{Round: d.round, Attempts: attempts}

	if d.hasLast && snap.Board.Equal(d.last) {
		d.stale++
		rep.Stale = true
	} else {
		d.stale = 0
	}
	d.last = snap.Board.Clone()
	d.hasLast = true
	rep.StaleRun = d.stale
	rep.Board = snap.Board

	if rep.Stale {
		d.log.Warn("board not updated since last round", "round", d.round, "stale", d.stale,
			"board", corefmt.EncodeHex(corefmt.PackBoard(snap.Board)))
	}
	// 第一次未變化不算微調；第 MaxStale+2 次未變化起微調用盡
	if d.cfg.MaxStale > 0 && d.stale-1 > d.cfg.MaxStale {
		rep.Skipped = true
		d.log.Warn("stale limit reached, skip gestures", "round", d.round, "stale", d.stale, "max_stale", d.cfg.MaxStale)
		return rep, nil
	}

	board, tray := snap.Board, snap.Tray
	for step := 0; len(tray) > 0; step++ {
		dec, err := search.SelectBestShape(board, tray)
		if err != nil {
			return rep, errs.Wrap(err, "select best shape")
		}
		if !dec.Placed {
			rep.Abandoned = dec.Remaining
			d.log.Info("no piece placeable", "round", d.round, "abandoned", len(dec.Remaining))
			break
		}
		mv := Move{
			Round:   d.round,
			Step:    step,
			Source:  dec.Source,
			Name:    dec.Piece.Name,
			Shape:   dec.Piece.Shape,
			Pos:     dec.Pos,
			Score:   dec.Score,
			Cleared: dec.Cleared,
			Board:   dec.Board,
			Stale:   d.stale,
		}
		if err := d.exec.Execute(ctx, mv); err != nil {
			return rep, errs.WrapWithExtra(err, "execute move", fmt.Sprintf("round=%d step=%d", d.round, step))
		}
		rep.Moves = append(rep.Moves, mv)
		rep.Lines += dec.Score
		rep.Cleared += dec.Cleared.Count()
		board, tray = dec.Board, dec.Remaining
	}
	rep.Board = board
	return rep, nil
}

// Run 連續跑 rounds 輪（0 表示不限），直到 ctx 結束或擷取端回傳 io.EOF。
// ctx 結束與 io.EOF 都視為正常停止。
func (d *Driver) Run(ctx context.Context, rounds int) (RunSummary, error) {
	var sum RunSummary
	for rounds <= 0 || sum.Rounds < rounds {
		if ctx.Err() != nil {
			return sum, nil
		}
		rep, err := d.Round(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				return sum, nil
			}
			return sum, err
		}
		sum.Rounds++
		sum.Moves += len(rep.Moves)
		sum.Lines += rep.Lines
		sum.Cleared += rep.Cleared
		if rep.Stale {
			sum.Stale++
		}
		if rep.Skipped {
			sum.Skipped++
		}
		d.log.Info("round done", "round", rep.Round, "moves", len(rep.Moves), "lines", rep.Lines,
			"cleared", rep.Cleared, "abandoned", len(rep.Abandoned), "attempts", rep.Attempts)
	}
	return sum, nil
}

// capture 有上限的擷取重試：第 n 次嘗試（從 0 起算）前等待 RetryDelay*(n/5)
func (d *Driver) capture(ctx context.Context) (Snapshot, int, error) {
	var lastErr error
	for attempt := 0; attempt <= d.cfg.MaxCaptureRetries; attempt++ {
		if delay := d.cfg.RetryDelay * time.Duration(attempt/5); delay > 0 {
			if err := d.sleep(ctx, delay); err != nil {
				return Snapshot{}, attempt, errs.WrapWarn(err, "capture canceled")
			}
		}
		if err := ctx.Err(); err != nil {
			return Snapshot{}, attempt, errs.WrapWarn(err, "capture canceled")
		}
		snap, err := d.capr.Capture(ctx)
		if err == nil {
			err = d.check(snap)
		}
		if err == nil {
			return snap, attempt + 1, nil
		}
		if errors.Is(err, io.EOF) {
			return Snapshot{}, attempt + 1, err
		}
		lastErr = err
		d.log.Warn("capture failed", "attempt", attempt+1, "err", err)
	}
	return Snapshot{}, d.cfg.MaxCaptureRetries + 1,
		errs.WrapWithExtra(ErrCaptureExhausted, fmt.Sprintf("giving up after %d retries", d.cfg.MaxCaptureRetries), lastErr.Error())
}

// check 擷取結果的結構檢查；失敗時視同擷取失敗
func (d *Driver) check(s Snapshot) error {
	if err := s.Board.Validate(); err != nil {
		return err
	}
	if d.cfg.MaxTray > 0 && len(s.Tray) > d.cfg.MaxTray {
		return errs.WrapWithExtra(ErrTrayTooLarge, "recapture", fmt.Sprintf("tray=%d max=%d", len(s.Tray), d.cfg.MaxTray))
	}
	for i, p := range s.Tray {
		if err := p.Shape.Validate(); err != nil {
			return errs.WrapWithExtra(err, "invalid captured piece", fmt.Sprintf("index=%d", i))
		}
	}
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// LogExecutor 只記錄每一步，不做任何動作；給回放與除錯用
type LogExecutor struct {
	Log *slog.Logger
}

func (e *LogExecutor) Execute(_ context.Context, mv Move) error {
	log := e.Log
	if log == nil {
		log = slog.Default()
	}
	log.Info("move",
		"round", mv.Round,
		"step", mv.Step,
		"source", mv.Source,
		"piece", mv.Name,
		"row", mv.Pos.Row,
		"col", mv.Pos.Col,
		"score", mv.Score,
		"cleared", mv.Cleared.Count(),
		"stale", mv.Stale,
	)
	return nil
}
