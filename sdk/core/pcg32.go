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

package core

import (
	"encoding/binary"
	"math"
	"math/bits"

	"github.com/zintix-labs/blocklab/errs"
)

const (
	pcg32Multiplier = 6364136223846793005
	pcg32FloatUnit  = 1.0 / (1 << 32)
	pcg32StateLen   = 16
)

// PCG32 64-bit 狀態、32-bit 輸出 (XSH RR)。
// 比 PCG64 便宜，精度較低（Float64 只有 32-bit），供對照實驗使用。
type PCG32 struct {
	state uint64
	inc   uint64
}

// NewPCG32WithSeed 依 PCG 參考實作的初始化流程：
// 先以 stream 步進一次，加上 seed，再步進一次。
func NewPCG32WithSeed(seed int64) *PCG32 {
	r := &PCG32{inc: (1 << 1) | 1}
	r.next()
	r.state += uint64(seed)
	r.next()
	return r
}

func (r *PCG32) Uint32() uint32 {
	return r.next()
}

func (r *PCG32) Uint64() uint64 {
	return (uint64(r.next()) << 32) | uint64(r.next())
}

func (r *PCG32) UintN(max uint) uint {
	if max == 0 {
		return 0
	}
	return uint(r.below64(uint64(max)))
}

func (r *PCG32) IntN(max int) int {
	if max <= 0 {
		return -1
	}
	if max <= math.MaxUint32 {
		return int(r.below32(uint32(max)))
	}
	return int(r.below64(uint64(max)))
}

func (r *PCG32) Float64() float64 {
	return float64(r.next()) * pcg32FloatUnit
}

// Snapshot big-endian state || inc
func (r *PCG32) Snapshot() ([]byte, error) {
	b := make([]byte, 0, pcg32StateLen)
	b = binary.BigEndian.AppendUint64(b, r.state)
	b = binary.BigEndian.AppendUint64(b, r.inc)
	return b, nil
}

func (r *PCG32) Restore(data []byte) error {
	if len(data) != pcg32StateLen {
		return errs.Warnf("pcg32 restore: want %d bytes, got %d", pcg32StateLen, len(data))
	}
	inc := binary.BigEndian.Uint64(data[8:])
	if inc&1 == 0 {
		return errs.NewWarn("pcg32 restore: increment must be odd")
	}
	r.state = binary.BigEndian.Uint64(data[:8])
	r.inc = inc
	return nil
}

func (r *PCG32) next() uint32 {
	old := r.state
	r.state = old*pcg32Multiplier + r.inc
	xorshifted := uint32(((old >> 18) ^ old) >> 27)
	rot := uint32(old >> 59)
	return bits.RotateLeft32(xorshifted, -int(rot))
}

func (r *PCG32) below32(bound uint32) uint32 {
	threshold := -bound % bound
	for {
		if v := r.next(); v >= threshold {
			return v % bound
		}
	}
}

func (r *PCG32) below64(bound uint64) uint64 {
	threshold := -bound % bound
	for {
		if v := r.Uint64(); v >= threshold {
			return v % bound
		}
	}
}
