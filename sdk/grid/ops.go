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

import "github.com/zintix-labs/blocklab/errs"

// Cleared 一次消行的結果
//
//   - Rows: 被消除的列 (以放置後盤面的 index 表示)
//   - Cols: 被消除的欄 (以「消列後」盤面的 index 表示)
type Cleared struct {
	Rows []int `json:"rows,omitempty"`
	Cols []int `json:"cols,omitempty"`
}

// Count 消除的列數 + 欄數
func (c Cleared) Count() int {
	return len(c.Rows) + len(c.Cols)
}

// CanPlace 檢查 shape 以 (row,col) 為左上角放置時，每個佔用格都在界內且落在空格上。
// 遇到第一個違規即回傳 false。
func CanPlace(b Board, s Shape, row int, col int) bool {
	for i := 0; i < s.Rows; i++ {
		for j := 0; j < s.Cols; j++ {
			if s.Mask[i*s.Cols+j] != Filled {
				continue
			}
			r, c := row+i, col+j
			if r < 0 || c < 0 || r >= b.Rows || c >= b.Cols || b.Cells[r*b.Cols+c] == Filled {
				return false
			}
		}
	}
	return true
}

// Place 回傳放置 shape 後的新盤面，不修改 b。
// 不可行的放置（越界或重疊）視為呼叫端違反前置條件，直接回傳錯誤而不是默默覆寫。
func Place(b Board, s Shape, row int, col int) (Board, error) {
	if !CanPlace(b, s, row, col) {
		return Board{}, errs.Preconditionf("infeasible placement at (%d,%d) for %dx%d shape", row, col, s.Rows, s.Cols)
	}
	nb := b.Clone()
	stamp(nb, s, row, col)
	return nb, nil
}

// stamp 原地寫入 shape，呼叫端保證可行
func stamp(b Board, s Shape, row int, col int) {
	for i := 0; i < s.Rows; i++ {
		for j := 0; j < s.Cols; j++ {
			if s.Mask[i*s.Cols+j] == Filled {
				b.Cells[(row+i)*b.Cols+col+j] = Filled
			}
		}
	}
}

// LinesAfter 回傳「假設 shape 放在 (row,col)」後的完整線數，等同
// CountFullLines(Place(b, s, row, col))，但不配置新盤面。呼叫端需先確認 CanPlace。
func LinesAfter(b Board, s Shape, row int, col int) int {
	covered := func(r, c int) bool {
		if b.Cells[r*b.Cols+c] == Filled {
			return true
		}
		i, j := r-row, c-col
		return i >= 0 && j >= 0 && i < s.Rows && j < s.Cols && s.Mask[i*s.Cols+j] == Filled
	}
	n := 0
	for r := 0; r < b.Rows; r++ {
		full := true
		for c := 0; c < b.Cols; c++ {
			if !covered(r, c) {
				full = false
				break
			}
		}
		if full {
			n++
		}
	}
	for c := 0; c < b.Cols; c++ {
		full := true
		for r := 0; r < b.Rows; r++ {
			if !covered(r, c) {
				full = false
				break
			}
		}
		if full {
			n++
		}
	}
	return n
}

// CountFullLines 完整的列數 + 完整的欄數；列與欄不加權
func CountFullLines(b Board) int {
	n := 0
	for r := 0; r < b.Rows; r++ {
		if rowFull(b.Cells, b.Cols, r) {
			n++
		}
	}
	for c := 0; c < b.Cols; c++ {
		if colFull(b.Cells, b.Rows, b.Cols, c) {
			n++
		}
	}
	return n
}

// ClearFullLines 消除完整列與完整欄並回傳新盤面
func ClearFullLines(b Board) Board {
	nb, _ := ClearLines(b)
	return nb
}

// ClearLines 兩段式消行，回傳新盤面與消除明細。
//
//  1. 列：在放置後盤面上判定完整列，移除後其餘列往下壓，頂端補空列。
//  2. 欄：在「消列後」的盤面上重新判定完整欄，移除後其餘欄往右壓，左側補空欄。
//
// 因為欄是在消列之後才判定，一條只因被消除的列才完整的欄不會被消除。
// 這與「列欄同時消除」的常見規則不同，是刻意保留的行為。
func ClearLines(b Board) (Board, Cleared) {
	nb := b.Clone()
	var cl Cleared
	rows, cols := nb.Rows, nb.Cols
	cells := nb.Cells

	// 列：自底向上的原地壓縮 (write pointer)
	wp := rows - 1
	for r := rows - 1; r >= 0; r-- {
		if rowFull(cells, cols, r) {
			cl.Rows = append(cl.Rows, r)
			continue
		}
		if r != wp {
			copy(cells[wp*cols:(wp+1)*cols], cells[r*cols:(r+1)*cols])
		}
		wp--
	}
	for w := wp; w >= 0; w-- {
		clear(cells[w*cols : (w+1)*cols])
	}

	// 欄：自右向左的原地壓縮
	wp = cols - 1
	for c := cols - 1; c >= 0; c-- {
		if colFull(cells, rows, cols, c) {
			cl.Cols = append(cl.Cols, c)
			continue
		}
		if c != wp {
			for r := 0; r < rows; r++ {
				cells[r*cols+wp] = cells[r*cols+c]
			}
		}
		wp--
	}
	for w := wp; w >= 0; w-- {
		for r := 0; r < rows; r++ {
			cells[r*cols+w] = Empty
		}
	}

	reverse(cl.Rows)
	reverse(cl.Cols)
	return nb, cl
}

func rowFull(cells []uint8, cols int, r int) bool {
	for c := 0; c < cols; c++ {
		if cells[r*cols+c] != Filled {
			return false
		}
	}
	return true
}

func colFull(cells []uint8, rows int, cols int, c int) bool {
	for r := 0; r < rows; r++ {
		if cells[r*cols+c] != Filled {
			return false
		}
	}
	return true
}

func reverse(xs []int) {
	for i, j := 0, len(xs)-1; i < j; i, j = i+1, j-1 {
		xs[i], xs[j] = xs[j], xs[i]
	}
}
