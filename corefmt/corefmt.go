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

// Package corefmt 盤面與亂數狀態的緊湊編碼。
//
// 盤面 frame 格式：
//
//	uvarint(rows) || uvarint(cols) || bitmap
//
// bitmap 以 row-major 順序每格 1 bit，MSB first，最後一個 byte 不足 8 格時補 0。
// 文字傳輸 (JSON/HTTP query) 一律使用無 padding 的 base64url。
package corefmt

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"

	"github.com/zintix-labs/blocklab/errs"
	"github.com/zintix-labs/blocklab/sdk/grid"
)

// maxSide 防止不可信輸入造成巨大配置
const maxSide = 1 << 10

// PackBoard 把盤面編成 frame
func PackBoard(b grid.Board) []byte {
	n := b.Rows * b.Cols
	out := make([]byte, 0, 2*binary.MaxVarintLen64+(n+7)/8)
	out = binary.AppendUvarint(out, uint64(b.Rows))
	out = binary.AppendUvarint(out, uint64(b.Cols))
	bitmap := make([]byte, (n+7)/8)
	for i, v := range b.Cells {
		if v == grid.Filled {
			bitmap[i>>3] |= 0x80 >> (i & 7)
		}
	}
	return append(out, bitmap...)
}

// UnpackBoard PackBoard 的反操作；長度不符或尾端補位非零皆視為不合法輸入
func UnpackBoard(frame []byte) (grid.Board, error) {
	rows, n1 := binary.Uvarint(frame)
	if n1 <= 0 {
		return grid.Board{}, errs.Preconditionf("board frame: invalid rows varint")
	}
	cols, n2 := binary.Uvarint(frame[n1:])
	if n2 <= 0 {
		return grid.Board{}, errs.Preconditionf("board frame: invalid cols varint")
	}
	if rows == 0 || cols == 0 || rows > maxSide || cols > maxSide {
		return grid.Board{}, errs.Preconditionf("board frame: dimensions %dx%d out of range", rows, cols)
	}
	bitmap := frame[n1+n2:]
	cells := int(rows * cols)
	if len(bitmap) != (cells+7)/8 {
		return grid.Board{}, errs.Preconditionf("board frame: bitmap length %d, want %d", len(bitmap), (cells+7)/8)
	}
	b, err := grid.NewBoard(int(rows), int(cols))
	if err != nil {
		return grid.Board{}, err
	}
	for i := 0; i < cells; i++ {
		if bitmap[i>>3]&(0x80>>(i&7)) != 0 {
			b.Cells[i] = grid.Filled
		}
	}
	if tail := cells & 7; tail != 0 && bitmap[len(bitmap)-1]&(0xFF>>tail) != 0 {
		return grid.Board{}, errs.Preconditionf("board frame: non-zero padding bits")
	}
	return b, nil
}

// EncodeBoard 盤面 → base64url 文字
func EncodeBoard(b grid.Board) string {
	return EncodeBase64URL(PackBoard(b))
}

// DecodeBoard base64url 文字 → 盤面
func DecodeBoard(s string) (grid.Board, error) {
	raw, err := DecodeBase64URL(s)
	if err != nil {
		return grid.Board{}, err
	}
	return UnpackBoard(raw)
}

func EncodeBase64URL(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

func DecodeBase64URL(s string) ([]byte, error) {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, errs.WrapWarn(err, "decode base64url failed")
	}
	return b, nil
}

// EncodeHex 給 log 用，比 base64 長但好肉眼比對
func EncodeHex(b []byte) string {
	return hex.EncodeToString(b)
}

func DecodeHex(s string) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, errs.WrapWarn(err, "decode hex failed")
	}
	return b, nil
}
