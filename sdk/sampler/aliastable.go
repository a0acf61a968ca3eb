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

// Package sampler 提供整數版 Vose alias table，用於依權重 O(1) 抽出方塊。
package sampler

import (
	"math"
	"math/bits"

	"github.com/zintix-labs/blocklab/errs"
	"github.com/zintix-labs/blocklab/sdk/core"
)

// AliasTable 整數 scaling 的 alias table。
//
//   - Prob[i] = weight[i] * Size 經過配對調整後的門檻，與 Total 比較
//   - Aliases[i] 槽位 i 落選時的替代索引
//
// 建表 O(N)，抽樣固定兩次 IntN，記憶體與權重總和無關。
type AliasTable struct {
	Prob    []int
	Aliases []int
	Size    int
	Total   int
}

// NewAliasTable 依非負整數權重建表。
// 空權重、負權重、全為零或 total*n 溢位時回傳錯誤。
func NewAliasTable(weights []int) (*AliasTable, error) {
	n := len(weights)
	if n == 0 {
		return nil, errs.NewWarn("alias table: empty weights")
	}
	total := uint64(0)
	for i, w := range weights {
		if w < 0 {
			return nil, errs.Warnf("alias table: negative weight at %d", i)
		}
		if total > uint64(math.MaxInt)-uint64(w) {
			return nil, errs.NewWarn("alias table: total weight overflows int")
		}
		total += uint64(w)
	}
	if total == 0 {
		return nil, errs.NewWarn("alias table: all weights are zero")
	}
	if hi, lo := bits.Mul64(total, uint64(n)); hi != 0 || lo > math.MaxInt64 {
		return nil, errs.NewWarn("alias table: weights too large to scale")
	}

	t := int(total)
	prob := make([]int, n)
	aliases := make([]int, n)
	small := make([]int, 0, n)
	large := make([]int, 0, n)
	for i, w := range weights {
		prob[i] = w * n
		aliases[i] = i
		if prob[i] < t {
			small = append(small, i)
		} else {
			large = append(large, i)
		}
	}
	for len(small) > 0 && len(large) > 0 {
		s := small[len(small)-1]
		small = small[:len(small)-1]
		l := large[len(large)-1]
		large = large[:len(large)-1]

		// s 的缺額由 l 補足；sum(prob) = total*n 保持不變
		aliases[s] = l
		prob[l] = prob[l] + prob[s] - t
		if prob[l] < t {
			small = append(small, l)
		} else {
			large = append(large, l)
		}
	}
	return &AliasTable{Prob: prob, Aliases: aliases, Size: n, Total: t}, nil
}

// Pick 先選槽位，再以 IntN(Total) < Prob[idx] 決定取自己或別名。
// 權重為零的索引永遠不會被抽中。
func (at *AliasTable) Pick(c *core.Core) int {
	if at == nil || at.Size == 0 {
		return -1
	}
	idx := c.IntN(at.Size)
	if c.IntN(at.Total) < at.Prob[idx] {
		return idx
	}
	return at.Aliases[idx]
}
