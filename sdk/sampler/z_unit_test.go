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

package sampler

import (
	"math"
	"testing"

	"github.com/zintix-labs/blocklab/sdk/core"
)

func TestNewAliasTableRejectsBadWeights(t *testing.T) {
	cases := map[string][]int{
		"empty":    nil,
		"negative": {1, -1},
		"zeros":    {0, 0, 0},
		"overflow": {math.MaxInt / 2, math.MaxInt / 2},
	}
	for name, w := range cases {
		if _, err := NewAliasTable(w); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestAliasTableInvariant(t *testing.T) {
	w := []int{5, 1, 0, 10, 4}
	at, err := NewAliasTable(w)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sum := 0
	for i, p := range at.Prob {
		if p < 0 || p > at.Total {
			t.Fatalf("slot %d prob %d outside [0,%d]", i, p, at.Total)
		}
		sum += p
	}
	if at.Size != len(w) || at.Total != 20 {
		t.Fatalf("unexpected size/total: %d/%d", at.Size, at.Total)
	}
	if sum > at.Total*at.Size {
		t.Fatalf("prob sum %d exceeds total*size", sum)
	}
}

func TestAliasTableFrequencies(t *testing.T) {
	w := []int{1, 3, 0, 6}
	at, err := NewAliasTable(w)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c := core.New(core.Default().New(2025))
	const draws = 200000
	counts := make([]int, len(w))
	for i := 0; i < draws; i++ {
		counts[at.Pick(c)]++
	}
	if counts[2] != 0 {
		t.Fatalf("zero-weight index drawn %d times", counts[2])
	}
	for i, wi := range w {
		want := float64(wi) / 10.0
		got := float64(counts[i]) / draws
		if math.Abs(got-want) > 0.01 {
			t.Fatalf("index %d: got %.4f want %.4f", i, got, want)
		}
	}
}

func TestAliasTableSingle(t *testing.T) {
	at, err := NewAliasTable([]int{7})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c := core.New(core.Default().New(1))
	for i := 0; i < 100; i++ {
		if got := at.Pick(c); got != 0 {
			t.Fatalf("single-entry table returned %d", got)
		}
	}
	var nilTable *AliasTable
	if nilTable.Pick(c) != -1 {
		t.Fatalf("nil table must return -1")
	}
}
