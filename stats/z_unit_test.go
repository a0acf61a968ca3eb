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

package stats

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"
)

func report(pieces []int, overs int) *StatReport {
	samples := make([]float64, len(pieces))
	collect := make([]int, Buckets.Len())
	total := 0
	for i, p := range pieces {
		samples[i] = float64(p)
		collect[Buckets.Index(p)]++
		total += p
	}
	sm := &SummaryReport{
		GameName:    "t",
		Games:       len(pieces),
		Trays:       total / 3,
		Pieces:      total,
		LinesScored: total / 2,
		GameOvers:   overs,
	}
	return NewStatReport(sm, collect, samples)
}

func TestBucketIndex(t *testing.T) {
	cases := map[int]int{0: 0, 9: 0, 10: 1, 19: 1, 20: 2, 999: 6, 1000: 7, 100000: 7}
	for in, want := range cases {
		if got := Buckets.Index(in); got != want {
			t.Fatalf("Index(%d) = %d want %d", in, got, want)
		}
	}
	if len(Buckets.Labels()) != Buckets.Len() {
		t.Fatalf("labels length mismatch")
	}
}

func TestDoneComputesSummary(t *testing.T) {
	r := report([]int{10, 20, 30, 40}, 4)
	r.Done()
	sm := r.Summary
	if sm.MeanPieces != 25 {
		t.Fatalf("mean %v", sm.MeanPieces)
	}
	// sample std of 10,20,30,40
	if math.Abs(sm.StdPieces-12.909944) > 1e-5 {
		t.Fatalf("std %v", sm.StdPieces)
	}
	if !(sm.PiecesCI.Lo < 25 && sm.PiecesCI.Hi > 25) {
		t.Fatalf("ci %+v does not cover mean", sm.PiecesCI)
	}
	if sm.GameOverRate != 1 || sm.GameOverCI.Hi != 1 || sm.GameOverCI.Lo <= 0 {
		t.Fatalf("game over %v %+v", sm.GameOverRate, sm.GameOverCI)
	}
	var sum float64
	for _, d := range r.Dist.PiecesDist {
		sum += d
	}
	if math.Abs(sum-1) > 1e-12 {
		t.Fatalf("dist sums to %v", sum)
	}
	if r.Quantile == nil || r.Quantile.Median.Hat < 20 || r.Quantile.Median.Hat > 30 {
		t.Fatalf("unexpected median: %+v", r.Quantile)
	}
}

func TestProportionCICP(t *testing.T) {
	p, ci := proportionCICP(0, 10, 0.95)
	if p != 0 || ci.Lo != 0 || ci.Hi <= 0 || ci.Hi >= 1 {
		t.Fatalf("k=0: %v %+v", p, ci)
	}
	p, ci = proportionCICP(5, 10, 0.95)
	if p != 0.5 || ci.Lo >= 0.5 || ci.Hi <= 0.5 {
		t.Fatalf("k=5: %v %+v", p, ci)
	}
	if _, ci := proportionCICP(0, 0, 0.95); ci.Lo != 0 || ci.Hi != 1 {
		t.Fatalf("n=0: %+v", ci)
	}
}

func TestEmptyReport(t *testing.T) {
	r := report(nil, 0)
	r.Done()
	if r.Summary.MeanPieces != 0 || r.Quantile != nil {
		t.Fatalf("unexpected empty report: %+v", r.Summary)
	}
}

func TestRenderers(t *testing.T) {
	for _, name := range []string{"json", "yaml", "table"} {
		r := report([]int{5, 15, 25}, 1)
		rd, err := RenderByName(name, time.Second)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		var buf bytes.Buffer
		if err := r.WriteWith(&buf, rd); err != nil {
			t.Fatalf("%s: write: %v", name, err)
		}
		if buf.Len() == 0 {
			t.Fatalf("%s: empty output", name)
		}
		switch name {
		case "json":
			var back StatReport
			if err := json.Unmarshal(buf.Bytes(), &back); err != nil || back.Summary.Games != 3 {
				t.Fatalf("json round trip: %v", err)
			}
		case "yaml":
			if !strings.Contains(buf.String(), "piecescollect: [") {
				t.Fatalf("expected flow-style sequence:\n%s", buf.String())
			}
		case "table":
			if !strings.Contains(buf.String(), "Game Over 95% CI") {
				t.Fatalf("missing table row:\n%s", buf.String())
			}
		}
	}
	if _, err := RenderByName("xml", 0); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}
