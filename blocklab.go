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

// Package blocklab 提供方塊擺放引擎的「組裝入口（assembler）」與「運行入口（runtime entry）」。
//
// Blocklab 把兩個必需的地基組裝在一起：
//  1. Catalog：遊戲目錄，由一或多個 fs.FS 內的 YAML/JSON 設定解析而來，以 game_name 為唯一鍵。
//  2. PRNGFactory：亂數核心工廠，保證自我對弈可重現。
//
// 在這之上提供三種入口：
//   - Driver：capture → decide → act 的實機迴圈（擷取與手勢由外部注入）。
//   - Machine / Runtime：伺服器端的自我對弈機台與機台池。
//   - Simulator：大量自我對弈，輸出統計報表。
//
// 決策本身（sdk/search）是純函數，不需要經過 Blocklab；Blocklab 只負責把設定與亂數接上。
package blocklab

import (
	"crypto/rand"
	"io/fs"
	"log/slog"
	"math"
	"math/big"

	"github.com/zintix-labs/blocklab/catalog"
	"github.com/zintix-labs/blocklab/configs"
	"github.com/zintix-labs/blocklab/errs"
	"github.com/zintix-labs/blocklab/sdk/core"
	"github.com/zintix-labs/blocklab/sdk/grid"
	"github.com/zintix-labs/blocklab/spec"
)

// Configs 用來把一或多個設定檔來源（fs.FS）打包成 New() 需要的參數。
//
// 可以用 go:embed 把設定編進 binary，也可以用 os.DirFS 在本機開發時讀取目錄。
func Configs(cfgs ...fs.FS) []fs.FS {
	return cfgs
}

// Blocklab 組裝器：持有目錄與亂數工廠。建好之後只讀，可被多 goroutine 共用。
type Blocklab struct {
	cat *catalog.Catalog
	cf  core.PRNGFactory
}

// New 建立 Blocklab；cf 不可為 nil，cfgs 至少一個
func New(cf core.PRNGFactory, cfgs []fs.FS) (*Blocklab, error) {
	if cf == nil {
		return nil, errs.NewFatal("prng factory required")
	}
	if len(cfgs) == 0 {
		return nil, errs.NewFatal("configs required")
	}
	cat, err := catalog.New(cfgs...)
	if err != nil {
		return nil, err
	}
	return &Blocklab{cat: cat, cf: cf}, nil
}

// NewDefault 以內建設定與預設 PRNG 建立
func NewDefault() (*Blocklab, error) {
	return New(core.Default(), Configs(configs.FS))
}

func (b *Blocklab) Names() []string {
	return b.cat.Names()
}

func (b *Blocklab) Summary() []catalog.Summary {
	return b.cat.Summary()
}

func (b *Blocklab) Entry(name string) (catalog.Entry, bool) {
	return b.cat.Get(name)
}

// Setting 依名稱取得遊戲設定（唯讀共用，請勿修改）
func (b *Blocklab) Setting(name string) (*spec.GameSetting, error) {
	return b.cat.Setting(name)
}

// ShapeLookup 回傳指定遊戲的方塊名稱查找函數，供 dto 解析托盤
func (b *Blocklab) ShapeLookup(name string) (func(string) (grid.Shape, bool), error) {
	gs, err := b.Setting(name)
	if err != nil {
		return nil, err
	}
	return func(piece string) (grid.Shape, bool) {
		p, ok := gs.Piece(piece)
		if !ok {
			return grid.Shape{}, false
		}
		return p.Shape, true
	}, nil
}

// factoryFor 設定檔可以指定 rng；沒指定時用 Blocklab 的工廠
func (b *Blocklab) factoryFor(gs *spec.GameSetting) (core.PRNGFactory, error) {
	if gs.RNG == "" {
		return b.cf, nil
	}
	cf, ok := core.FactoryByName(gs.RNG)
	if !ok {
		return nil, errs.NewWarn("unknown rng: " + gs.RNG)
	}
	return cf, nil
}

// NewMachine 以隨機 seed 建立一台自我對弈機台
func (b *Blocklab) NewMachine(name string) (*Machine, error) {
	seed, err := cryptoSeed()
	if err != nil {
		return nil, err
	}
	return b.NewMachineWithSeed(name, seed)
}

// NewMachineWithSeed 同一份設定 + 同一個 seed 產生一致的對局
func (b *Blocklab) NewMachineWithSeed(name string, seed int64) (*Machine, error) {
	gs, err := b.Setting(name)
	if err != nil {
		return nil, err
	}
	cf, err := b.factoryFor(gs)
	if err != nil {
		return nil, err
	}
	return newMachineWithSeed(gs, cf, seed)
}

func (b *Blocklab) NewSimulator(name string) (*Simulator, error) {
	seed, err := cryptoSeed()
	if err != nil {
		return nil, err
	}
	return b.NewSimulatorWithSeed(name, seed)
}

func (b *Blocklab) NewSimulatorWithSeed(name string, seed int64) (*Simulator, error) {
	gs, err := b.Setting(name)
	if err != nil {
		return nil, err
	}
	cf, err := b.factoryFor(gs)
	if err != nil {
		return nil, err
	}
	return newSimulatorWithSeed(gs, cf, seed)
}

// NewSimulatorByJSON 以呼叫端自帶的設定模擬；設定不需要存在於目錄中
func (b *Blocklab) NewSimulatorByJSON(raw []byte, seed int64) (*Simulator, error) {
	gs, err := spec.GetGameSettingByJSON(raw)
	if err != nil {
		return nil, errs.WrapWarn(err, "invalid game setting")
	}
	cf, err := b.factoryFor(gs)
	if err != nil {
		return nil, err
	}
	return newSimulatorWithSeed(gs, cf, seed)
}

func (b *Blocklab) NewSimulatorByYAML(raw []byte, seed int64) (*Simulator, error) {
	gs, err := spec.GetGameSettingByYAML(raw)
	if err != nil {
		return nil, errs.WrapWarn(err, "invalid game setting")
	}
	cf, err := b.factoryFor(gs)
	if err != nil {
		return nil, err
	}
	return newSimulatorWithSeed(gs, cf, seed)
}

// NewDriver 以指定遊戲的 driver 設定建立實機迴圈；log 為 nil 時丟棄日誌
func (b *Blocklab) NewDriver(name string, c Capturer, e Executor, log *slog.Logger) (*Driver, error) {
	gs, err := b.Setting(name)
	if err != nil {
		return nil, err
	}
	return NewDriver(DriverConfigFrom(gs), c, e, log)
}

// BuildRuntime 為目錄中每款遊戲建立一個機台池
func (b *Blocklab) BuildRuntime(poolSize int) (*Runtime, error) {
	names := b.cat.Names()
	rt := &Runtime{
		lab:      b,
		pools:    make(map[string]*MachinePool, len(names)),
		names:    names,
		done:     make(chan struct{}),
		poolSize: max(1, poolSize),
	}
	rt.reason.Store("")
	for _, n := range names {
		gs, err := b.Setting(n)
		if err != nil {
			return nil, err
		}
		cf, err := b.factoryFor(gs)
		if err != nil {
			return nil, err
		}
		seed, err := cryptoSeed()
		if err != nil {
			return nil, err
		}
		mp, err := newMachinePool(rt.poolSize, gs, cf, seed)
		if err != nil {
			rt.Close()
			return nil, err
		}
		rt.pools[n] = mp
	}
	return rt, nil
}

func cryptoSeed() (int64, error) {
	seed, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	if err != nil {
		return 0, errs.Wrap(err, "new crypto seed error in go std lib")
	}
	return seed.Int64(), nil
}
