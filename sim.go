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
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/zintix-labs/blocklab/errs"
	"github.com/zintix-labs/blocklab/recorder"
	"github.com/zintix-labs/blocklab/sdk/core"
	"github.com/zintix-labs/blocklab/spec"
	"github.com/zintix-labs/blocklab/stats"
)

const capPrepare int = 100

// Simulator 大量自我對弈：可建立多台機台平行紀錄統計。
//
// 同一個 seed 在同樣的 workers 數下結果完全一致；
// 第 0 台機台直接用初始 seed，其餘機台的 seed 由 seedMaker 依序推導。
type Simulator struct {
	GameName  string
	gs        *spec.GameSetting
	cf        core.PRNGFactory
	initSeed  int64
	seedmaker *seedMaker
	mBuf      []*Machine
	rBuf      []*recorder.GameRecorder
}

func newSimulatorWithSeed(gs *spec.GameSetting, cf core.PRNGFactory, seed int64) (*Simulator, error) {
	s := &Simulator{
		GameName:  gs.GameName,
		gs:        gs,
		cf:        cf,
		initSeed:  seed,
		seedmaker: newSeedMaker(seed),
		mBuf:      make([]*Machine, 1, capPrepare),
		rBuf:      make([]*recorder.GameRecorder, 0, capPrepare),
	}
	m, err := newMachineWithSeed(gs, cf, s.initSeed)
	if err != nil {
		return nil, err
	}
	s.mBuf[0] = m
	return s, nil
}

func (s *Simulator) Seed() int64 {
	return s.initSeed
}

// Sim 單線模擬器：以一台機台連續跑 games 局並回傳統計結果與用時
func (s *Simulator) Sim(games int, maxTrays int, showpb bool) (*stats.StatReport, time.Duration, error) {
	defer s.reset()
	if err := validSimArgs(games, maxTrays, 1); err != nil {
		return nil, 0, err
	}
	r, err := recorder.NewGameRecorder(s.GameName, s.cf.Name(), s.initSeed)
	if err != nil {
		return nil, 0, err
	}
	s.rBuf = append(s.rBuf, r)
	m := s.mBuf[0]

	bar := pb.StartNew(games)
	if !showpb {
		bar.SetWriter(io.Discard)
	}
	for i := 0; i < games; i++ {
		g, err := m.PlayInternal(maxTrays)
		if err != nil {
			bar.Finish()
			return nil, 0, err
		}
		r.Record(g)
		bar.Increment()
	}
	used := time.Since(bar.StartTime())
	bar.Finish()

	result := r.Done()
	result.Done()
	return result, used, nil
}

// SimMP 平行執行 workers 台機台，每台跑 games 局（總計 games*workers 局），合併後回傳統計結果與用時
func (s *Simulator) SimMP(games int, maxTrays int, workers int, showpb bool) (*stats.StatReport, time.Duration, error) {
	defer s.reset()
	if err := validSimArgs(games, maxTrays, workers); err != nil {
		return nil, 0, err
	}
	for len(s.mBuf) < workers {
		m, err := newMachineWithSeed(s.gs, s.cf, s.seedmaker.next())
		if err != nil {
			return nil, 0, err
		}
		s.mBuf = append(s.mBuf, m)
	}
	for len(s.rBuf) < workers {
		r, err := recorder.NewGameRecorder(s.GameName, s.cf.Name(), s.initSeed)
		if err != nil {
			return nil, 0, err
		}
		s.rBuf = append(s.rBuf, r)
	}

	var (
		wg      sync.WaitGroup
		failed  atomic.Bool
		errOnce sync.Once
		simErr  error
	)
	wg.Add(workers)
	bar := pb.StartNew(games * workers)
	if !showpb {
		bar.SetWriter(io.Discard)
	}
	for i := 0; i < workers; i++ {
		go func(m *Machine, r *recorder.GameRecorder) {
			defer wg.Done()
			for n := 0; n < games && !failed.Load(); n++ {
				g, err := m.PlayInternal(maxTrays)
				if err != nil {
					errOnce.Do(func() { simErr = err })
					failed.Store(true)
					return
				}
				r.Record(g)
				bar.Increment()
			}
		}(s.mBuf[i], s.rBuf[i])
	}
	wg.Wait()
	used := time.Since(bar.StartTime())
	bar.Finish()
	if simErr != nil {
		return nil, 0, simErr
	}

	merged, err := recorder.MergeGameRecorder(s.rBuf[:workers])
	if err != nil {
		return nil, 0, err
	}
	result := merged.Done()
	result.Done()
	return result, used, nil
}

func validSimArgs(games int, maxTrays int, workers int) error {
	if games < 1 {
		return errs.NewWarn("games must > 0")
	}
	if maxTrays < 1 {
		return errs.NewWarn("max trays must > 0")
	}
	if workers < 1 {
		return errs.NewWarn("workers must > 0")
	}
	return nil
}

func (s *Simulator) reset() {
	s.rBuf = s.rBuf[:0]
}

const mask63 = uint64(1<<63) - 1

type seedMaker struct {
	state atomic.Uint64 // always in [0, 2^63)
}

func newSeedMaker(seed int64) *seedMaker {
	s := &seedMaker{}
	s.state.Store(uint64(seed) & mask63)
	return s
}

// next 以 CAS 推進全週期 LCG（mod 2^63），再用可逆的 mix63 打散；可被多 goroutine 同時呼叫
func (s *seedMaker) next() int64 {
	for {
		old := s.state.Load()
		next := (old*6364136223846793005 + 1442695040888963407) & mask63
		if s.state.CompareAndSwap(old, next) {
			return int64(mix63(next)) // 一定非負
		}
	}
}

// mix63 只用可逆的 xor-shift 與乘奇數（mod 2^63）
func mix63(x uint64) uint64 {
	x &= mask63
	x ^= x >> 30
	x = (x * 0xBF58476D1CE4E5B9) & mask63
	x ^= x >> 27
	x = (x * 0x94D049BB133111EB) & mask63
	x ^= x >> 31
	return x & mask63
}
