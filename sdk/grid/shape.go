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

// Shape 方塊的佔用遮罩，尺寸剛好等於方塊外框（不留白邊）。
// Shape 建好後不應再被修改；所有操作只讀取 Mask。
type Shape struct {
	Rows int
	Cols int
	Mask []uint8
}

// NewShape 由二維矩陣建立 Shape，拒絕空矩陣、非矩形、非 0/1 與全空遮罩
func NewShape(m [][]uint8) (Shape, error) {
	rows, cols, err := checkMatrix(m)
	if err != nil {
		return Shape{}, errs.Wrap(err, "invalid shape matrix")
	}
	s := Shape{Rows: rows, Cols: cols, Mask: make([]uint8, 0, rows*cols)}
	for _, row := range m {
		s.Mask = append(s.Mask, row...)
	}
	if s.Cells() == 0 {
		return Shape{}, errs.Preconditionf("shape has no occupied cell")
	}
	return s, nil
}

// ParseShape 解析文字方塊，例如 []string{"#.", "##"}
func ParseShape(lines []string) (Shape, error) {
	m, err := parseRows(lines)
	if err != nil {
		return Shape{}, err
	}
	return NewShape(m)
}

// MustShape 測試與內建設定用；解析失敗直接 panic
func MustShape(lines ...string) Shape {
	s, err := ParseShape(lines)
	if err != nil {
		panic(err)
	}
	return s
}

// Validate 檢查遮罩完整且至少有一格佔用
func (s Shape) Validate() error {
	if s.Rows < 1 || s.Cols < 1 {
		return errs.Preconditionf("empty shape: rows=%d cols=%d", s.Rows, s.Cols)
	}
	if len(s.Mask) != s.Rows*s.Cols {
		return errs.Preconditionf("shape mask length %d != %dx%d", len(s.Mask), s.Rows, s.Cols)
	}
	n := 0
	for i, v := range s.Mask {
		switch v {
		case Filled:
			n++
		case Empty:
		default:
			return errs.Preconditionf("shape cell %d holds non-binary value %d", i, v)
		}
	}
	if n == 0 {
		return errs.Preconditionf("shape has no occupied cell")
	}
	return nil
}

func (s Shape) At(i int, j int) bool {
	return s.Mask[i*s.Cols+j] == Filled
}

// Cells 回傳佔用格數
func (s Shape) Cells() int {
	n := 0
	for _, v := range s.Mask {
		if v == Filled {
			n++
		}
	}
	return n
}

func (s Shape) Rows2D() [][]uint8 {
	out := make([][]uint8, s.Rows)
	for r := 0; r < s.Rows; r++ {
		out[r] = make([]uint8, s.Cols)
		copy(out[r], s.Mask[r*s.Cols:(r+1)*s.Cols])
	}
	return out
}

func (s Shape) String() string {
	return render(s.Mask, s.Rows, s.Cols)
}
