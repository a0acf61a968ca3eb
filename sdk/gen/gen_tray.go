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

package gen

import (
	"github.com/zintix-labs/blocklab/errs"
	"github.com/zintix-labs/blocklab/sdk/core"
	"github.com/zintix-labs/blocklab/sdk/sampler"
	"github.com/zintix-labs/blocklab/sdk/search"
	"github.com/zintix-labs/blocklab/spec"
)

// TrayGenerator 依方塊目錄的權重發出托盤。
// 目錄與 alias table 在建構時算好，熱路徑只做兩次 IntN 加一次 slice 寫入。
type TrayGenerator struct {
	core    *core.Core
	setting *spec.GameSetting
	lut     *sampler.AliasTable
	catalog []search.Piece // 依設定順序；Source 在發牌時覆寫為槽位
	size    int
}

// NewTrayGenerator 建立發牌器；方塊目錄為空或權重不合法時回錯
func NewTrayGenerator(c *core.Core, gs *spec.GameSetting) (*TrayGenerator, error) {
	if c == nil || gs == nil {
		return nil, errs.NewFatal("tray generator: core and setting required")
	}
	lut, err := sampler.NewAliasTable(gs.Weights())
	if err != nil {
		return nil, errs.Wrap(err, "tray generator: build alias table")
	}
	cat := make([]search.Piece, len(gs.Pieces))
	for i, p := range gs.Pieces {
		cat[i] = search.Piece{Shape: p.Shape, Name: p.Name}
	}
	return &TrayGenerator{core: c, setting: gs, lut: lut, catalog: cat, size: gs.TraySize}, nil
}

// Next 發出一個新托盤，Source 依序為 0..tray_size-1。
// 回傳新的 slice；呼叫端可自由保存。
func (tg *TrayGenerator) Next() []search.Piece {
	tray := make([]search.Piece, tg.size)
	for slot := range tray {
		p := tg.catalog[tg.lut.Pick(tg.core)]
		p.Source = slot
		tray[slot] = p
	}
	return tray
}

// Size 每個托盤的方塊數
func (tg *TrayGenerator) Size() int {
	return tg.size
}
