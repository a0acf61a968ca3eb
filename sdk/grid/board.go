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

// Package grid 定義盤面（Board）與方塊（Shape）的佔用模型，以及放置/消行等純函數轉換。
//
// 盤面採用 row-major 的扁平陣列儲存（與 calc 系列對 screen 的處理方式相同），
// index = row*Cols + col。所有會改變盤面的操作都回傳新的 Board，不修改輸入。
package grid

import (
	"strings"

	"github.com/zintix-labs/blocklab/errs"
)

const (
	Empty  uint8 = 0
	Filled uint8 = 1
)

// Pos 盤面座標：shape 左上角對齊的格子
type Pos struct {
	Row int `json:"row" yaml:"row"`
	Col int `json:"col" yaml:"col"`
}

// Board 固定尺寸的二元佔用盤面
type Board struct {
	Rows  int
	Cols  int
	Cells []uint8
}

// NewBoard 建立全空盤面
func NewBoard(rows int, cols int) (Board, error) {
	if rows < 1 || cols < 1 {
		return Board{}, errs.Preconditionf("invalid board dimensions: rows=%d cols=%d", rows, cols)
	}
	return Board{Rows: rows, Cols: cols, Cells: make([]uint8, rows*cols)}, nil
}

// BoardFrom 由二維矩陣建立盤面，矩陣必須為非空矩形且只含 0/1
func BoardFrom(m [][]uint8) (Board, error) {
	rows, cols, err := checkMatrix(m)
	if err != nil {
		return Board{}, errs.Wrap(err, "invalid board matrix")
	}
	b := Board{Rows: rows, Cols: cols, Cells: make([]uint8, 0, rows*cols)}
	for _, row := range m {
		b.Cells = append(b.Cells, row...)
	}
	return b, nil
}

// ParseBoard 解析文字盤面，每行一列。'#'/'1'/'X' 為佔用，'.'/'0' 為空，空行略過。
func ParseBoard(text string) (Board, error) {
	m, err := parseRows(strings.Split(text, "\n"))
	if err != nil {
		return Board{}, err
	}
	return BoardFrom(m)
}

// Validate 檢查盤面結構是否完整
func (b Board) Validate() error {
	if b.Rows < 1 || b.Cols < 1 {
		return errs.Preconditionf("empty board: rows=%d cols=%d", b.Rows, b.Cols)
	}
	if len(b.Cells) != b.Rows*b.Cols {
		return errs.Preconditionf("board cells length %d != %dx%d", len(b.Cells), b.Rows, b.Cols)
	}
	for i, v := range b.Cells {
		if v > Filled {
			return errs.Preconditionf("board cell %d holds non-binary value %d", i, v)
		}
	}
	return nil
}

// At 回報 (r,c) 是否佔用；越界視為未佔用
func (b Board) At(r int, c int) bool {
	if r < 0 || c < 0 || r >= b.Rows || c >= b.Cols {
		return false
	}
	return b.Cells[r*b.Cols+c] == Filled
}

// Filled 回傳佔用格數
func (b Board) Filled() int {
	n := 0
	for _, v := range b.Cells {
		if v == Filled {
			n++
		}
	}
	return n
}

func (b Board) Clone() Board {
	cells := make([]uint8, len(b.Cells))
	copy(cells, b.Cells)
	return Board{Rows: b.Rows, Cols: b.Cols, Cells: cells}
}

func (b Board) Equal(o Board) bool {
	if b.Rows != o.Rows || b.Cols != o.Cols || len(b.Cells) != len(o.Cells) {
		return false
	}
	for i := range b.Cells {
		if b.Cells[i] != o.Cells[i] {
			return false
		}
	}
	return true
}

// Rows2D 轉回二維矩陣（新配置，可自由修改）
func (b Board) Rows2D() [][]uint8 {
	out := make([][]uint8, b.Rows)
	for r := 0; r < b.Rows; r++ {
		out[r] = make([]uint8, b.Cols)
		copy(out[r], b.Cells[r*b.Cols:(r+1)*b.Cols])
	}
	return out
}

// String 以 '#'/'.' 輸出，每列一行
func (b Board) String() string {
	return render(b.Cells, b.Rows, b.Cols)
}

// ============================================================
// ** 內部方法 **
// ============================================================

func render(cells []uint8, rows int, cols int) string {
	var sb strings.Builder
	sb.Grow(rows * (cols + 1))
	for r := 0; r < rows; r++ {
		if r > 0 {
			sb.WriteByte('\n')
		}
		for c := 0; c < cols; c++ {
			if cells[r*cols+c] == Filled {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
	}
	return sb.String()
}

func checkMatrix(m [][]uint8) (int, int, error) {
	if len(m) == 0 || len(m[0]) == 0 {
		return 0, 0, errs.Preconditionf("empty matrix")
	}
	cols := len(m[0])
	for i, row := range m {
		if len(row) != cols {
			return 0, 0, errs.Preconditionf("non-rectangular matrix: row %d has %d cols, want %d", i, len(row), cols)
		}
		for j, v := range row {
			if v > Filled {
				return 0, 0, errs.Preconditionf("non-binary value %d at (%d,%d)", v, i, j)
			}
		}
	}
	return len(m), cols, nil
}

func parseRows(lines []string) ([][]uint8, error) {
	m := make([][]uint8, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		row := make([]uint8, 0, len(line))
		for _, ch := range line {
			switch ch {
			case '#', '1', 'X', 'x':
				row = append(row, Filled)
			case '.', '0':
				row = append(row, Empty)
			case ' ', '\t':
			default:
				return nil, errs.Preconditionf("unexpected cell rune %q in %q", ch, line)
			}
		}
		m = append(m, row)
	}
	return m, nil
}
