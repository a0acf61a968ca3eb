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

// Package core 提供自我對弈（self-play）所需的可重現亂數核心。
//
// 搜尋本身是決定性的，亂數只出現在「托盤怎麼發」這一側；
// 因此同一個 seed 必須產生同一串托盤，模擬結果才可以回放與比對。
package core

import "strings"

// PRNG 亂數來源：取樣 + 狀態快照/還原
type PRNG interface {
	RAND
	Restorable
}

// Restorable 可快照與還原內部狀態
type Restorable interface {
	Snapshot() ([]byte, error)
	Restore([]byte) error
}

// RAND 核心取樣能力。
//
// Bounded 取樣（IntN/UintN）交給各 PRNG 自己實作，32-bit 與 64-bit 輸出的產生器
// 各自有最合適的無偏取樣路徑。
type RAND interface {
	// Uint64 回傳 uint64 亂數
	Uint64() uint64
	// Float64 回傳 [0,1)
	Float64() float64
	// UintN 回傳 [0,max)，max == 0 回傳 0
	UintN(uint) uint
	// IntN 回傳 [0,max)，max <= 0 回傳 -1
	IntN(int) int
}

// PRNGFactory 以 seed 建立 PRNG。
//
// 同一實作、同一版本下 New(seed) 必須是決定性的：相同 seed 得到相同輸出序列。
// 不提供「無 seed」的建構方式；seed 一律由上層產生並保存，才能回放。
type PRNGFactory interface {
	New(int64) PRNG
	Name() string
}

// DefaultPRNG 預設工廠，產生 PCG64
type DefaultPRNG struct{}

func (d *DefaultPRNG) New(seed int64) PRNG {
	return NewPCG64WithSeed(seed)
}

func (d *DefaultPRNG) Name() string { return "pcg64" }

func Default() *DefaultPRNG {
	return &DefaultPRNG{}
}

// PCG32Factory 產生 64-bit 狀態、32-bit 輸出的 PCG32
type PCG32Factory struct{}

func (f *PCG32Factory) New(seed int64) PRNG {
	return NewPCG32WithSeed(seed)
}

func (f *PCG32Factory) Name() string { return "pcg32" }

// FactoryByName 依名稱取得工廠；空字串視為預設 pcg64
func FactoryByName(name string) (PRNGFactory, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "pcg64":
		return Default(), true
	case "pcg32":
		return &PCG32Factory{}, true
	default:
		return nil, false
	}
}

// Core 封裝 PRNG 並提供常用取樣工具
type Core struct {
	PRNG
}

// New 允許使用外部自實現的 PRNG 建立 Core
func New(rng PRNG) *Core {
	return &Core{rng}
}

// Pick 從列表中隨機取一個元素；空列表回傳 -1
func (c *Core) Pick(src []int) int {
	if len(src) == 0 {
		return -1
	}
	return src[c.IntN(len(src))]
}

// ShuffleInts 就地 Fisher-Yates 洗牌
func (c *Core) ShuffleInts(src []int) {
	for i := len(src) - 1; i > 0; i-- {
		j := c.IntN(i + 1)
		src[i], src[j] = src[j], src[i]
	}
}
