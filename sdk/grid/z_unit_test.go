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

package grid

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/zintix-labs/blocklab/errs"
)

func mustBoard(t *testing.T, text string) Board {
	t.Helper()
	b, err := ParseBoard(text)
	if err != nil {
		t.Fatalf("parse board: %v", err)
	}
	return b
}

func randomBoard(rng *rand.Rand, rows, cols int, density float64) Board {
	b, _ := NewBoard(rows, cols)
	for i := range b.Cells {
		if rng.Float64() < density {
			b.Cells[i] = Filled
		}
	}
	return b
}

func TestParseAndRender(t *testing.T) {
	b := mustBoard(t, "#..\n.#.\n..#\n")
	if b.Rows != 3 || b.Cols != 3 || b.Filled() != 3 {
		t.Fatalf("unexpected board: %+v", b)
	}
	if got := b.String(); got != "#..\n.#.\n..#" {
		t.Fatalf("unexpected render: %q", got)
	}
	if !b.At(1, 1) || b.At(0, 1) || b.At(-1, 0) || b.At(3, 3) {
		t.Fatalf("At mismatch")
	}
}

func TestMalformedInput(t *testing.T) {
	if _, err := BoardFrom(nil); !errors.Is(err, errs.ErrPrecondition) {
		t.Fatalf("expected precondition error for empty board, got %v", err)
	}
	if _, err := NewShape([][]uint8{{1, 1}, {1}}); !errors.Is(err, errs.ErrPrecondition) {
		t.Fatalf("expected precondition error for ragged shape, got %v", err)
	}
	if _, err := NewShape([][]uint8{{0, 0}}); !errors.Is(err, errs.ErrPrecondition) {
		t.Fatalf("expected precondition error for empty mask, got %v", err)
	}
	if _, err := BoardFrom([][]uint8{{2}}); err == nil {
		t.Fatalf("expected error for non-binary cell")
	}
	if _, err := NewBoard(0, 10); err == nil {
		t.Fatalf("expected error for zero rows")
	}
	if err := (Shape{}).Validate(); err == nil {
		t.Fatalf("zero shape must not validate")
	}
}

// CanPlace 必須與逐格暴力判定一致
func TestCanPlaceMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	shapes := []Shape{
		MustShape("#"),
		MustShape("##"),
		MustShape("#", "#", "#"),
		MustShape("#.", "##"),
		MustShape(".#.", "###"),
	}
	for round := 0; round < 50; round++ {
		b := randomBoard(rng, 5, 6, 0.4)
		for _, s := range shapes {
			for row := -2; row <= b.Rows; row++ {
				for col := -2; col <= b.Cols; col++ {
					want := true
					for i := 0; i < s.Rows && want; i++ {
						for j := 0; j < s.Cols; j++ {
							if !s.At(i, j) {
								continue
							}
							r, c := row+i, col+j
							if r < 0 || c < 0 || r >= b.Rows || c >= b.Cols || b.At(r, c) {
								want = false
								break
							}
						}
					}
					if got := CanPlace(b, s, row, col); got != want {
						t.Fatalf("CanPlace(%d,%d) got %v want %v\nboard:\n%s\nshape:\n%s", row, col, got, want, b, s)
					}
				}
			}
		}
	}
}

func TestCanPlaceIgnoresEmptyMaskCellsOutOfBounds(t *testing.T) {
	b, _ := NewBoard(3, 3)
	s := MustShape("#.", "#.")
	// 右側空白欄超出盤面，但佔用格仍在界內
	if !CanPlace(b, s, 0, 2) {
		t.Fatalf("unoccupied mask cells must not be bounds-checked")
	}
}

func TestPlaceAddsExactlyShapeCells(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))
	s := MustShape("##", "#.")
	for round := 0; round < 100; round++ {
		b := randomBoard(rng, 6, 6, 0.3)
		before := b.Clone()
		for row := 0; row <= b.Rows-s.Rows; row++ {
			for col := 0; col <= b.Cols-s.Cols; col++ {
				if !CanPlace(b, s, row, col) {
					if _, err := Place(b, s, row, col); !errors.Is(err, errs.ErrPrecondition) {
						t.Fatalf("expected precondition error for infeasible place, got %v", err)
					}
					continue
				}
				nb, err := Place(b, s, row, col)
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if nb.Filled() != b.Filled()+s.Cells() {
					t.Fatalf("filled %d != %d + %d", nb.Filled(), b.Filled(), s.Cells())
				}
				for i, v := range b.Cells {
					if v == Filled && nb.Cells[i] != Filled {
						t.Fatalf("place cleared a filled cell at %d", i)
					}
				}
			}
		}
		if !b.Equal(before) {
			t.Fatalf("Place mutated its input board")
		}
	}
}

func TestCountFullLinesBounds(t *testing.T) {
	for _, n := range []int{1, 4, 10} {
		b, _ := NewBoard(n, n)
		if got := CountFullLines(b); got != 0 {
			t.Fatalf("empty %dx%d: got %d want 0", n, n, got)
		}
		for i := range b.Cells {
			b.Cells[i] = Filled
		}
		if got := CountFullLines(b); got != 2*n {
			t.Fatalf("full %dx%d: got %d want %d", n, n, got, 2*n)
		}
	}
}

func TestClearRowsShiftDown(t *testing.T) {
	b := mustBoard(t, `
		#..
		###
		.#.
	`)
	nb, cl := ClearLines(b)
	if len(cl.Rows) != 1 || cl.Rows[0] != 1 || len(cl.Cols) != 0 {
		t.Fatalf("unexpected cleared: %+v", cl)
	}
	want := mustBoard(t, `
		...
		#..
		.#.
	`)
	if !nb.Equal(want) {
		t.Fatalf("got\n%s\nwant\n%s", nb, want)
	}
	if b.Filled() != 5 {
		t.Fatalf("ClearLines mutated input")
	}
}

func TestClearColumnsShiftRight(t *testing.T) {
	b := mustBoard(t, `
		.#.#
		#..#
		..##
	`)
	nb, cl := ClearLines(b)
	if len(cl.Rows) != 0 || len(cl.Cols) != 1 || cl.Cols[0] != 3 {
		t.Fatalf("unexpected cleared: %+v", cl)
	}
	want := mustBoard(t, `
		..#.
		.#..
		...#
	`)
	if !nb.Equal(want) {
		t.Fatalf("got\n%s\nwant\n%s", nb, want)
	}
}

// 欄只在消列後的盤面上判定：列消除後頂端補入空列，原本完整的欄不再完整
func TestClearOrderRowsBeforeColumns(t *testing.T) {
	b := mustBoard(t, `
		#..
		#..
		###
	`)
	if got := CountFullLines(b); got != 2 {
		t.Fatalf("expected row 2 and col 0 to be full, got %d", got)
	}
	nb, cl := ClearLines(b)
	if len(cl.Rows) != 1 || len(cl.Cols) != 0 {
		t.Fatalf("column must not be cleared after row pass: %+v", cl)
	}
	want := mustBoard(t, `
		...
		#..
		#..
	`)
	if !nb.Equal(want) {
		t.Fatalf("got\n%s\nwant\n%s", nb, want)
	}
}

func TestClearKeepsDimensions(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 9))
	for round := 0; round < 200; round++ {
		b := randomBoard(rng, 4, 5, 0.8)
		nb := ClearFullLines(b)
		if nb.Rows != b.Rows || nb.Cols != b.Cols || len(nb.Cells) != len(b.Cells) {
			t.Fatalf("dimensions changed: %dx%d", nb.Rows, nb.Cols)
		}
		if nb.Filled() > b.Filled() {
			t.Fatalf("clearing added cells")
		}
	}
}

func TestLinesAfterMatchesPlaceThenCount(t *testing.T) {
	rng := rand.New(rand.NewPCG(11, 5))
	shapes := []Shape{MustShape("#"), MustShape("###"), MustShape("#", "#"), MustShape("##", "##")}
	for round := 0; round < 100; round++ {
		b := randomBoard(rng, 5, 5, 0.7)
		for _, s := range shapes {
			for row := 0; row <= b.Rows-s.Rows; row++ {
				for col := 0; col <= b.Cols-s.Cols; col++ {
					if !CanPlace(b, s, row, col) {
						continue
					}
					nb, err := Place(b, s, row, col)
					if err != nil {
						t.Fatalf("unexpected error: %v", err)
					}
					if got, want := LinesAfter(b, s, row, col), CountFullLines(nb); got != want {
						t.Fatalf("LinesAfter=%d CountFullLines=%d at (%d,%d)", got, want, row, col)
					}
				}
			}
		}
	}
}

func BenchmarkLinesAfter(b *testing.B) {
	rng := rand.New(rand.NewPCG(2, 4))
	bd := randomBoard(rng, 10, 10, 0.5)
	s := MustShape("##", "##")
	b.ReportAllocs()
	for b.Loop() {
		for r := 0; r <= bd.Rows-s.Rows; r++ {
			for c := 0; c <= bd.Cols-s.Cols; c++ {
				if CanPlace(bd, s, r, c) {
					_ = LinesAfter(bd, s, r, c)
				}
			}
		}
	}
}
