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

package search

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/zintix-labs/blocklab/errs"
	"github.com/zintix-labs/blocklab/sdk/grid"
)

func board(t *testing.T, text string) grid.Board {
	t.Helper()
	b, err := grid.ParseBoard(text)
	if err != nil {
		t.Fatalf("parse board: %v", err)
	}
	return b
}

func empty(t *testing.T, rows, cols int) grid.Board {
	t.Helper()
	b, err := grid.NewBoard(rows, cols)
	if err != nil {
		t.Fatalf("new board: %v", err)
	}
	return b
}

func TestFindBestPlacementFirstScannedWinsTie(t *testing.T) {
	b := board(t, `
		##.
		##.
	`)
	pos, score, ok := FindBestPlacement(b, grid.MustShape("#"))
	if !ok || score != 1 {
		t.Fatalf("expected score 1, got ok=%v score=%d", ok, score)
	}
	// (0,2) 與 (1,2) 都完成一列，先掃到的 (0,2) 勝出
	if pos != (grid.Pos{Row: 0, Col: 2}) {
		t.Fatalf("expected (0,2), got %+v", pos)
	}
}

func TestFindBestPlacementLaterStrictlyHigherWins(t *testing.T) {
	b := board(t, `
		...
		...
		##.
	`)
	pos, score, ok := FindBestPlacement(b, grid.MustShape("#"))
	if !ok || score != 1 || pos != (grid.Pos{Row: 2, Col: 2}) {
		t.Fatalf("expected (2,2) score 1, got %+v score=%d ok=%v", pos, score, ok)
	}
}

func TestFindBestPlacementNoPosition(t *testing.T) {
	b := board(t, `
		###
		###
		###
	`)
	for _, s := range []grid.Shape{grid.MustShape("#"), grid.MustShape("##"), grid.MustShape("#.", "##")} {
		pos, score, ok := FindBestPlacement(b, s)
		if ok || score != NoScore || pos != (grid.Pos{}) {
			t.Fatalf("expected no position, got %+v score=%d ok=%v", pos, score, ok)
		}
	}
}

func TestFindBestPlacementShapeLargerThanBoard(t *testing.T) {
	b := empty(t, 2, 2)
	if _, _, ok := FindBestPlacement(b, grid.MustShape("###")); ok {
		t.Fatalf("3-wide shape must not fit a 2x2 board")
	}
}

func TestFindBestPlacementMalformedInput(t *testing.T) {
	b := empty(t, 3, 3)
	shapes := []grid.Shape{
		{},
		{Rows: 2, Cols: 2, Mask: []uint8{1, 1, 1}},
		{Rows: 1, Cols: 2, Mask: []uint8{0, 0}},
	}
	for _, s := range shapes {
		pos, score, ok := FindBestPlacement(b, s)
		if ok || score != NoScore || pos != (grid.Pos{}) {
			t.Fatalf("malformed shape %+v must have no position, got %+v score=%d ok=%v", s, pos, score, ok)
		}
	}
	if _, _, ok := FindBestPlacement(grid.Board{}, grid.MustShape("#")); ok {
		t.Fatalf("zero board must have no position")
	}
	if _, _, ok := FindBestPlacement(grid.Board{Rows: 2, Cols: 2, Cells: []uint8{0}}, grid.MustShape("#")); ok {
		t.Fatalf("short cells board must have no position")
	}
}

// 分數必須等於放置後的完整線數，且不小於任何其它可行點
func TestFindBestPlacementIsMaximal(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 1))
	shapes := []grid.Shape{grid.MustShape("#"), grid.MustShape("####"), grid.MustShape("#", "#", "#"), grid.MustShape("##", "#.")}
	for round := 0; round < 60; round++ {
		b := empty(t, 6, 6)
		for i := range b.Cells {
			if rng.Float64() < 0.6 {
				b.Cells[i] = grid.Filled
			}
		}
		for _, s := range shapes {
			pos, score, ok := FindBestPlacement(b, s)
			best := NoScore
			for r := 0; r <= b.Rows-s.Rows; r++ {
				for c := 0; c <= b.Cols-s.Cols; c++ {
					nb, err := grid.Place(b, s, r, c)
					if err != nil {
						continue
					}
					if sc := grid.CountFullLines(nb); sc > best {
						best = sc
					}
				}
			}
			if ok != (best != NoScore) || score != best {
				t.Fatalf("score %d ok=%v, brute force %d", score, ok, best)
			}
			if ok {
				nb, err := grid.Place(b, s, pos.Row, pos.Col)
				if err != nil || grid.CountFullLines(nb) != score {
					t.Fatalf("reported position %+v does not yield score %d", pos, score)
				}
			}
		}
	}
}

func TestSelectBestShapeSingleCellOnEmptyBoard(t *testing.T) {
	b := empty(t, 4, 4)
	tray := []Piece{{Shape: grid.MustShape("#"), Source: 7}}
	d, err := SelectBestShape(b, tray)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.Placed || d.Index != 0 || d.Source != 7 {
		t.Fatalf("unexpected decision: %+v", d)
	}
	if d.Pos != (grid.Pos{Row: 0, Col: 0}) || d.Score != 0 || d.Cleared.Count() != 0 {
		t.Fatalf("expected (0,0) score 0 no clear, got %+v score=%d cleared=%+v", d.Pos, d.Score, d.Cleared)
	}
	if d.Board.Filled() != 1 || !d.Board.At(0, 0) {
		t.Fatalf("expected only (0,0) filled:\n%s", d.Board)
	}
	if len(d.Remaining) != 0 {
		t.Fatalf("expected empty remaining tray, got %d", len(d.Remaining))
	}
	if b.Filled() != 0 {
		t.Fatalf("input board mutated")
	}
}

func TestSelectBestShapeNothingPlaceable(t *testing.T) {
	b := board(t, `
		##
		..
	`)
	tray := []Piece{{Shape: grid.MustShape("#", "#"), Source: 1}}
	d, err := SelectBestShape(b, tray)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Placed || d.Index != -1 || d.Score != NoScore {
		t.Fatalf("expected no-shape-placeable, got %+v", d)
	}
	if !d.Board.Equal(b) {
		t.Fatalf("board must be unchanged:\n%s", d.Board)
	}
	if len(d.Remaining) != 1 {
		t.Fatalf("remaining tray must keep the unplaceable piece")
	}
}

func TestSelectBestShapeTieKeepsTrayOrder(t *testing.T) {
	b := empty(t, 5, 5)
	tray := []Piece{
		{Shape: grid.MustShape("##"), Source: 0},
		{Shape: grid.MustShape("#"), Source: 1},
	}
	d, err := SelectBestShape(b, tray)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Index != 0 || d.Source != 0 {
		t.Fatalf("tie must keep first piece, got index %d", d.Index)
	}
	if len(d.Remaining) != 1 || d.Remaining[0].Source != 1 {
		t.Fatalf("remaining must hold only the second piece: %+v", d.Remaining)
	}
}

func TestSelectBestShapePrefersClearingPieceAndClears(t *testing.T) {
	b := board(t, `
		....
		....
		....
		###.
	`)
	tray := []Piece{
		{Shape: grid.MustShape("##"), Source: 0},
		{Shape: grid.MustShape("#"), Source: 1},
		{Shape: grid.MustShape("###"), Source: 2},
	}
	d, err := SelectBestShape(b, tray)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Index != 1 || d.Pos != (grid.Pos{Row: 3, Col: 3}) || d.Score != 1 {
		t.Fatalf("expected single cell at (3,3) score 1, got idx=%d %+v score=%d", d.Index, d.Pos, d.Score)
	}
	if d.Board.Filled() != 0 || len(d.Cleared.Rows) != 1 {
		t.Fatalf("expected the bottom row cleared:\n%s", d.Board)
	}
	if len(d.Remaining) != 2 || d.Remaining[0].Source != 0 || d.Remaining[1].Source != 2 {
		t.Fatalf("unexpected remaining: %+v", d.Remaining)
	}
	if len(tray) != 3 {
		t.Fatalf("input tray mutated")
	}
}

func TestSelectBestShapePreconditions(t *testing.T) {
	b := empty(t, 3, 3)
	if _, err := SelectBestShape(b, nil); !errors.Is(err, errs.ErrPrecondition) {
		t.Fatalf("expected precondition error for empty tray, got %v", err)
	}
	if _, err := SelectBestShape(grid.Board{}, []Piece{{Shape: grid.MustShape("#")}}); !errors.Is(err, errs.ErrPrecondition) {
		t.Fatalf("expected precondition error for empty board, got %v", err)
	}
	bad := grid.Shape{Rows: 2, Cols: 2, Mask: []uint8{1, 1, 1}}
	if _, err := SelectBestShape(b, []Piece{{Shape: bad}}); !errors.Is(err, errs.ErrPrecondition) {
		t.Fatalf("expected precondition error for malformed shape, got %v", err)
	}
}

func TestPlayTrayConsumesEachPieceOnce(t *testing.T) {
	b := empty(t, 3, 3)
	tray := []Piece{
		{Shape: grid.MustShape("###"), Source: 0},
		{Shape: grid.MustShape("###"), Source: 1},
		{Shape: grid.MustShape("###"), Source: 2},
		{Shape: grid.MustShape("##", "##"), Source: 3},
	}
	res, err := PlayTray(b, tray)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	seen := map[int]bool{}
	for _, m := range res.Moves {
		if seen[m.Source] {
			t.Fatalf("piece %d placed twice", m.Source)
		}
		seen[m.Source] = true
	}
	if len(res.Moves)+len(res.Abandoned) != len(tray) {
		t.Fatalf("moves %d + abandoned %d != tray %d", len(res.Moves), len(res.Abandoned), len(tray))
	}
	if !res.Board.Equal(res.Moves[len(res.Moves)-1].Board) {
		t.Fatalf("final board must equal last decision board")
	}
}

func TestPlayTrayStopsWhenNothingFits(t *testing.T) {
	b := board(t, `
		#.#.
		.#.#
		#.#.
		.#.#
	`)
	tray := []Piece{
		{Shape: grid.MustShape("##"), Source: 0},
		{Shape: grid.MustShape("#"), Source: 1},
	}
	res, err := PlayTray(b, tray)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Moves) != 1 || res.Moves[0].Source != 1 {
		t.Fatalf("expected only the single cell to be placed, got %+v", res.Moves)
	}
	if len(res.Abandoned) != 1 || res.Abandoned[0].Source != 0 {
		t.Fatalf("expected the domino abandoned, got %+v", res.Abandoned)
	}
}

func TestPlayTrayContextStopsWhenDone(t *testing.T) {
	b := empty(t, 3, 3)
	tray := []Piece{{Shape: grid.MustShape("#"), Source: 0}, {Shape: grid.MustShape("#"), Source: 1}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := PlayTrayContext(ctx, b, tray); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled error, got %v", err)
	}

	res, err := PlayTrayContext(context.Background(), b, tray)
	if err != nil || len(res.Moves) != 2 {
		t.Fatalf("expected two moves, got %d err=%v", len(res.Moves), err)
	}
}

func BenchmarkSelectBestShape10x10(b *testing.B) {
	rng := rand.New(rand.NewPCG(5, 5))
	bd, _ := grid.NewBoard(10, 10)
	for i := range bd.Cells {
		if rng.Float64() < 0.45 {
			bd.Cells[i] = grid.Filled
		}
	}
	tray := []Piece{
		{Shape: grid.MustShape("#####"), Source: 0},
		{Shape: grid.MustShape("##", "##"), Source: 1},
		{Shape: grid.MustShape("#..", "#..", "###"), Source: 2},
	}
	b.ReportAllocs()
	for b.Loop() {
		if _, err := SelectBestShape(bd, tray); err != nil {
			b.Fatal(err)
		}
	}
}
