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

package recorder

import (
	"github.com/zintix-labs/blocklab/errs"
	"github.com/zintix-labs/blocklab/stats"
)

// Game 一局自我對弈的結果
type Game struct {
	Trays     int  // 發出的托盤數
	Pieces    int  // 成功放置的方塊數
	Lines     int  // 放置後的完整線數加總 (分數)
	Cleared   int  // 實際消除的線數加總
	Abandoned int  // 放不下而被放棄的方塊數
	Over      bool // 是否因放不下而結束 (false 表示跑滿 maxTrays)
}

// GameRecorder 遊戲紀錄員
//
// GameRecorder 只累積 int，並保留每局放置數作為分位數樣本；透過 Done 輸出統計報表。
// 單一 GameRecorder 不可被多 goroutine 同時 Record；併發時每個 worker 一個，最後 Merge。
type GameRecorder struct {
	GameName string
	PRNG     string
	Seed     int64
	Basic    *BasicRecord
	collect  []int     // 依 stats.Buckets 分桶
	samples  []float64 // 每局放置數
}

// BasicRecord 基本累計
type BasicRecord struct {
	Games     int
	Trays     int
	Pieces    int
	Lines     int
	Cleared   int
	Abandoned int
	GameOvers int
}

func NewGameRecorder(name string, prng string, seed int64) (*GameRecorder, error) {
	if name == "" {
		return nil, errs.NewFatal("game recorder: game name required")
	}
	return &GameRecorder{
		GameName: name,
		PRNG:     prng,
		Seed:     seed,
		Basic:    new(BasicRecord),
		collect:  make([]int, stats.Buckets.Len()),
		samples:  make([]float64, 0, 1024),
	}, nil
}

// Record 紀錄一局
func (r *GameRecorder) Record(g Game) {
	b := r.Basic
	b.Games++
	b.Trays += g.Trays
	b.Pieces += g.Pieces
	b.Lines += g.Lines
	b.Cleared += g.Cleared
	b.Abandoned += g.Abandoned
	if g.Over {
		b.GameOvers++
	}
	r.collect[stats.Buckets.Index(g.Pieces)]++
	r.samples = append(r.samples, float64(g.Pieces))
}

// MergeGameRecorder 合併多個 worker 的紀錄；遊戲名稱必須一致。
// 種子與 PRNG 取第一個紀錄員的值 (即模擬器的初始種子)。
func MergeGameRecorder(rs []*GameRecorder) (*GameRecorder, error) {
	if len(rs) == 0 {
		return nil, errs.NewFatal("merge game record err : no recorder")
	}
	r0 := rs[0]
	m, err := NewGameRecorder(r0.GameName, r0.PRNG, r0.Seed)
	if err != nil {
		return nil, err
	}
	n := 0
	for _, v := range rs {
		n += len(v.samples)
	}
	m.samples = make([]float64, 0, n)
	for _, v := range rs {
		if v.GameName != r0.GameName {
			return nil, errs.NewFatal("merge game record err : different game name")
		}
		m.Basic.Games += v.Basic.Games
		m.Basic.Trays += v.Basic.Trays
		m.Basic.Pieces += v.Basic.Pieces
		m.Basic.Lines += v.Basic.Lines
		m.Basic.Cleared += v.Basic.Cleared
		m.Basic.Abandoned += v.Basic.Abandoned
		m.Basic.GameOvers += v.Basic.GameOvers
		for i := range v.collect {
			m.collect[i] += v.collect[i]
		}
		m.samples = append(m.samples, v.samples...)
	}
	return m, nil
}

// Done 轉成統計報表（尚未呼叫 StatReport.Done）
func (r *GameRecorder) Done() *stats.StatReport {
	b := r.Basic
	summary := &stats.SummaryReport{
		GameName:     r.GameName,
		PRNG:         r.PRNG,
		Seed:         r.Seed,
		Games:        b.Games,
		Trays:        b.Trays,
		Pieces:       b.Pieces,
		LinesScored:  b.Lines,
		LinesCleared: b.Cleared,
		GameOvers:    b.GameOvers,
	}
	collect := append([]int(nil), r.collect...)
	samples := append([]float64(nil), r.samples...)
	return stats.NewStatReport(summary, collect, samples)
}

// Reset 清空累計，保留名稱與種子
func (r *GameRecorder) Reset() {
	*r.Basic = BasicRecord{}
	clear(r.collect)
	r.samples = r.samples[:0]
}
