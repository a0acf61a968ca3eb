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
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/zintix-labs/blocklab/dto"
	"github.com/zintix-labs/blocklab/errs"
	"github.com/zintix-labs/blocklab/sdk/core"
	"github.com/zintix-labs/blocklab/spec"
)

// brokenCap 壞機台通道容量；滿了代表連續故障，池子自行關閉
const brokenCap = 100

// MachinePool 管理「某一款遊戲」的所有機台實例。
//  1. pool：健康且可用的機台，供 Play() 借出 / 歸還。
//  2. broken：panic 或 fatal 的壞機台，送往此通道後立即補一台新機以維持容量。
type MachinePool struct {
	gameName      string
	gs            *spec.GameSetting
	cf            core.PRNGFactory
	initSeed      int64
	seedMaker     *seedMaker
	pool          chan *Machine // 可用機台
	broken        chan *Machine // 壞機台
	done          chan struct{} // 關閉訊號：關閉後不再允許借機/歸還/補機
	closeOnce     sync.Once
	poolsize      int
	rebuild       atomic.Int32 // 補機次數
	inflight      atomic.Int32 // 使用中
	panics        atomic.Int32 // panic 次數
	fatals        atomic.Int32 // fatal 次數（機台狀態不可信）
	closeReason   atomic.Value // string
	closeInflight atomic.Int32 // 關閉當下 inflight
	closeAvail    atomic.Int32 // 關閉當下 len(pool)
	closeBroken   atomic.Int32 // 關閉當下 len(broken)
}

// newMachinePool 預先建立 n 台（至少 1 台）機台放入 pool
func newMachinePool(n int, gs *spec.GameSetting, cf core.PRNGFactory, seed int64) (*MachinePool, error) {
	n = max(1, n)
	p := &MachinePool{
		gameName:  gs.GameName,
		gs:        gs,
		cf:        cf,
		initSeed:  seed,
		seedMaker: newSeedMaker(seed),
		pool:      make(chan *Machine, n),
		broken:    make(chan *Machine, brokenCap),
		done:      make(chan struct{}),
		poolsize:  n,
	}
	p.closeReason.Store("")
	p.closeInflight.Store(-1)
	p.closeAvail.Store(-1)
	p.closeBroken.Store(-1)

	for i := 0; i < n; i++ {
		m, err := newMachineWithSeed(gs, cf, p.seedMaker.next())
		if err != nil {
			return nil, err
		}
		p.pool <- m
	}
	return p, nil
}

// Close 進入關閉狀態；之後的 Play() 直接回錯
func (p *MachinePool) Close() {
	p.closeWithReason("closed")
}

func (p *MachinePool) Closed() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// closeWithReason 只會生效一次；關閉瞬間做一次快照方便事後排查
func (p *MachinePool) closeWithReason(reason string) {
	p.closeOnce.Do(func() {
		if reason == "" {
			reason = "closed"
		}
		p.closeReason.Store(reason)
		p.closeInflight.Store(p.inflight.Load())
		p.closeAvail.Store(int32(len(p.pool)))
		p.closeBroken.Store(int32(len(p.broken)))
		close(p.done)
	})
}

// isFatalErr 只有錯誤本身宣告 Fatal 才代表機台狀態不可信；請求類錯誤不淘汰機台
func isFatalErr(err error) bool {
	if e, ok := errs.AsErr(err); ok {
		return e.ErrLv == errs.Fatal
	}
	return false
}

// Play 借一台機台跑一局；panic 或 fatal 的機台送修並補機
func (p *MachinePool) Play(ctx context.Context, req *dto.PlayRequest) (res dto.PlayResult, err error) {
	var m *Machine
	select {
	case <-p.done:
		return res, errs.NewFatal("machine pool closed: " + p.ClosedReason())
	case <-ctx.Done():
		return res, errs.NewWarn("play canceled/timeout: " + ctx.Err().Error())
	case m = <-p.pool:
		p.inflight.Add(1)
	}
	if m == nil {
		return res, errs.NewFatal("machine pool got nil machine")
	}

	defer func() {
		p.inflight.Add(-1)
		isPanic := false
		if r := recover(); r != nil {
			isPanic = true
			p.panics.Add(1)
			err = errs.NewFatal(fmt.Sprintf("machine %s panic : %v", p.gameName, r))
		}
		if p.Closed() {
			return
		}
		if isPanic || isFatalErr(err) {
			if !isPanic {
				p.fatals.Add(1)
			}
			select {
			case p.broken <- m:
			default:
				p.closeWithReason("overwhelmed_by_failures")
				return
			}
			nm, buildErr := newMachineWithSeed(p.gs, p.cf, p.seedMaker.next())
			p.rebuild.Add(1)
			if buildErr != nil {
				err = errs.NewFatal(fmt.Sprintf("machine %s can not build", p.gameName))
				p.closeWithReason("rebuild_failed")
				return
			}
			select {
			case <-p.done:
			case p.pool <- nm:
			}
			return
		}
		select {
		case <-p.done:
		case p.pool <- m:
		}
	}()

	return m.Play(req)
}

func (p *MachinePool) PoolSize() int {
	return p.poolsize
}

func (p *MachinePool) ClosedReason() string {
	if v := p.closeReason.Load(); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// MachinePoolMetrics 拉取式觀測快照。Available/BrokenBacklog 來自 len(chan)，高併發下為近似值。
type MachinePoolMetrics struct {
	GameName      string `json:"game_name"`
	PoolSize      int    `json:"pool_size"`
	Available     int    `json:"available"`
	Inflight      int    `json:"inflight"`
	BrokenBacklog int    `json:"broken_backlog"`
	Rebuild       int    `json:"rebuild"`
	Panics        int    `json:"panics"`
	Fatals        int    `json:"fatals"`
	Closed        bool   `json:"closed"`
	CloseReason   string `json:"close_reason"`

	CloseInflight int `json:"close_inflight"` // -1 表示尚未關閉
	CloseAvail    int `json:"close_avail"`    // -1 表示尚未關閉
	CloseBroken   int `json:"close_broken"`   // -1 表示尚未關閉
}

func (p *MachinePool) Metrics() MachinePoolMetrics {
	return MachinePoolMetrics{
		GameName:      p.gameName,
		PoolSize:      p.poolsize,
		Available:     len(p.pool),
		Inflight:      int(p.inflight.Load()),
		BrokenBacklog: len(p.broken),
		Rebuild:       int(p.rebuild.Load()),
		Panics:        int(p.panics.Load()),
		Fatals:        int(p.fatals.Load()),
		Closed:        p.Closed(),
		CloseReason:   p.ClosedReason(),
		CloseInflight: int(p.closeInflight.Load()),
		CloseAvail:    int(p.closeAvail.Load()),
		CloseBroken:   int(p.closeBroken.Load()),
	}
}
