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
	"strings"
	"sync"
	"sync/atomic"

	"github.com/zintix-labs/blocklab/dto"
	"github.com/zintix-labs/blocklab/errs"
)

// Runtime 伺服器端的自我對弈入口：每款遊戲一個 MachinePool
type Runtime struct {
	lab *Blocklab

	pools map[string]*MachinePool
	names []string // 固定順序，用於觀測/列舉

	done      chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool
	reason    atomic.Value // string

	poolSize int
}

func (rt *Runtime) Play(ctx context.Context, req *dto.PlayRequest) (dto.PlayResult, error) {
	select {
	case <-ctx.Done():
		return dto.PlayResult{}, errs.NewWarn("play canceled/timeout: " + ctx.Err().Error())
	case <-rt.done:
		rt.closed.Store(true)
		return dto.PlayResult{}, errs.NewFatal("runtime closed: " + rt.ClosedReason())
	default:
	}
	if req == nil {
		return dto.PlayResult{}, errs.NewWarn("nil play request")
	}
	mp, ok := rt.pools[strings.ToLower(strings.TrimSpace(req.Game))]
	if !ok {
		return dto.PlayResult{}, errs.Warnf("game %q not found", req.Game)
	}
	return mp.Play(ctx, req)
}

// Metrics 依遊戲名稱排序的機台池快照
func (rt *Runtime) Metrics() []MachinePoolMetrics {
	out := make([]MachinePoolMetrics, 0, len(rt.names))
	for _, n := range rt.names {
		if mp, ok := rt.pools[n]; ok {
			out = append(out, mp.Metrics())
		}
	}
	return out
}

// Close 可重複呼叫；同時關閉所有機台池
func (rt *Runtime) Close() {
	rt.closeWithReason("closed")
}

func (rt *Runtime) closeWithReason(reason string) {
	rt.closeOnce.Do(func() {
		if reason == "" {
			reason = "closed"
		}
		rt.reason.Store(reason)
		rt.closed.Store(true)
		for _, mp := range rt.pools {
			mp.closeWithReason(reason)
		}
		close(rt.done)
	})
}

func (rt *Runtime) Closed() bool {
	return rt.closed.Load()
}

func (rt *Runtime) ClosedReason() string {
	if v := rt.reason.Load(); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
