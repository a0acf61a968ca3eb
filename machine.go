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
	"strings"
	"sync"

	"github.com/zintix-labs/blocklab/corefmt"
	"github.com/zintix-labs/blocklab/dto"
	"github.com/zintix-labs/blocklab/errs"
	"github.com/zintix-labs/blocklab/recorder"
	"github.com/zintix-labs/blocklab/sdk/core"
	"github.com/zintix-labs/blocklab/sdk/gen"
	"github.com/zintix-labs/blocklab/sdk/grid"
	"github.com/zintix-labs/blocklab/sdk/search"
	"github.com/zintix-labs/blocklab/spec"
)

// DefaultMaxTrays 對外 Play 沒指定上限時使用；避免單一請求跑不停
const DefaultMaxTrays = 10000

// Machine 一台自我對弈機台：持有 RNG 核心與發牌器，每局從設定的開局盤面開始，
// 不斷發托盤並以 search.PlayTray 擺放，直到有方塊放不下（game over）或達到托盤上限。
//
// 並發語意：
//   - 同一台 Machine 不應被多 goroutine 同時使用；Play 有鎖保護，PlayInternal 沒有。
//   - 要併發就由上層建立多台 Machine（MachinePool / Simulator）。
type Machine struct {
	gameName string
	gs       *spec.GameSetting
	prng     string
	core     *core.Core
	gen      *gen.TrayGenerator
	mu       sync.Mutex
	initseed int64 // 出生 seed（便於追溯；完整重現請用 Snapshot/Restore）
}

func newMachineWithSeed(gs *spec.GameSetting, cf core.PRNGFactory, seed int64) (*Machine, error) {
	m := &Machine{
		gameName: gs.GameName,
		gs:       gs,
		prng:     cf.Name(),
		core:     core.New(cf.New(seed)),
		initseed: seed,
	}
	tg, err := gen.NewTrayGenerator(m.core, gs)
	if err != nil {
		return nil, err
	}
	m.gen = tg
	return m, nil
}

func (m *Machine) GameName() string { return m.gameName }

func (m *Machine) Seed() int64 { return m.initseed }

// Play 對外入口：驗證請求、處理起始快照、跑一局並轉成 DTO。
//
// 帶 start_b64u 時視為回放：先 restore 到該狀態開局，結束後把機台還原回自己的流水，
// 因此回放不會影響這台機台之後的對局。
func (m *Machine) Play(req *dto.PlayRequest) (dto.PlayResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if req == nil {
		return dto.PlayResult{}, errs.NewWarn("nil play request")
	}
	if !strings.EqualFold(strings.TrimSpace(req.Game), m.gameName) {
		return dto.PlayResult{}, errs.NewWarn("game name is not matched")
	}
	maxTrays := req.MaxTrays
	if maxTrays == 0 {
		maxTrays = DefaultMaxTrays
	}
	if maxTrays < 0 || maxTrays > DefaultMaxTrays {
		return dto.PlayResult{}, errs.Warnf("max_trays must be between 1 and %d", DefaultMaxTrays)
	}
	start, err := req.StartSnap()
	if err != nil {
		return dto.PlayResult{}, err
	}

	own, err := m.SnapshotCore()
	if err != nil {
		return dto.PlayResult{}, errs.NewFatal("before snapshot error " + err.Error())
	}
	replay := len(start) != 0
	if replay {
		if err := m.RestoreCore(start); err != nil {
			return dto.PlayResult{}, errs.WrapWarn(err, "restore core err")
		}
	} else {
		start = own
	}

	var log []dto.TrayDTO
	if req.Moves {
		log = make([]dto.TrayDTO, 0, 16)
	}
	g, board, err := m.play(maxTrays, func(dealt []search.Piece, res search.Result) {
		if log != nil {
			log = append(log, dto.TrayDTO{Dealt: dto.NewPiecesDTO(dealt), Result: dto.NewSolveResultDTO(res)})
		}
	})
	if err != nil {
		if e := m.RestoreCore(own); e != nil {
			return dto.PlayResult{}, errs.NewFatal("fall back err " + e.Error())
		}
		return dto.PlayResult{}, err
	}

	after, err := m.SnapshotCore()
	if err != nil {
		return dto.PlayResult{}, errs.NewFatal("after snapshot error " + err.Error())
	}
	if replay {
		if err := m.RestoreCore(own); err != nil {
			return dto.PlayResult{}, errs.NewFatal("restore core back err " + err.Error())
		}
	}

	return dto.PlayResult{
		Game:      m.gameName,
		Trays:     g.Trays,
		Pieces:    g.Pieces,
		Lines:     g.Lines,
		Cleared:   g.Cleared,
		Abandoned: g.Abandoned,
		Over:      g.Over,
		Board:     dto.BoardLines(board),
		Log:       log,
		State: dto.PlayState{
			StartCoreSnapB64U: corefmt.EncodeBase64URL(start),
			AfterCoreSnapB64U: corefmt.EncodeBase64URL(after),
		},
	}, nil
}

// PlayInternal 直接跑一局並回傳計數；模擬器的熱路徑，不上鎖、不留紀錄
func (m *Machine) PlayInternal(maxTrays int) (recorder.Game, error) {
	g, _, err := m.play(maxTrays, nil)
	return g, err
}

// play 一局：maxTrays 必須 >= 1
func (m *Machine) play(maxTrays int, onTray func([]search.Piece, search.Result)) (recorder.Game, grid.Board, error) {
	var g recorder.Game
	board := m.gs.Board.Start()
	for g.Trays < maxTrays {
		tray := m.gen.Next()
		g.Trays++
		res, err := search.PlayTray(board, tray)
		if err != nil {
			return g, board, errs.Wrap(err, "play tray")
		}
		if onTray != nil {
			onTray(tray, res)
		}
		board = res.Board
		g.Pieces += len(res.Moves)
		g.Lines += res.Lines()
		g.Cleared += res.ClearedLines()
		if len(res.Abandoned) > 0 {
			g.Abandoned += len(res.Abandoned)
			g.Over = true
			break
		}
	}
	return g, board, nil
}

// SnapshotCore 取得 Core 狀態
func (m *Machine) SnapshotCore() ([]byte, error) {
	return m.core.Snapshot()
}

// RestoreCore 恢復 Core 狀態
func (m *Machine) RestoreCore(src []byte) error {
	return m.core.Restore(src)
}
