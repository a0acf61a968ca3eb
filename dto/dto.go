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

package dto

import (
	"strings"

	"github.com/zintix-labs/blocklab/corefmt"
	"github.com/zintix-labs/blocklab/sdk/grid"
	"github.com/zintix-labs/blocklab/sdk/search"
)

// PieceDTO 對外輸出的方塊
type PieceDTO struct {
	Name   string  `json:"name,omitempty"`
	Source int     `json:"source"`
	Shape  [][]int `json:"shape"`
}

// DecisionDTO 一次選擇的對外結構
//
// placed=false 時 index/source 為 -1、score 為 -1，board 為原盤面。
type DecisionDTO struct {
	Placed    bool         `json:"placed"`
	Index     int          `json:"index"`
	Source    int          `json:"source"`
	Piece     *PieceDTO    `json:"piece,omitempty"`
	Pos       *grid.Pos    `json:"pos,omitempty"`
	Score     int          `json:"score"`
	Cleared   grid.Cleared `json:"cleared"`
	Board     [][]int      `json:"board"`
	BoardB64U string       `json:"board_b64u"`
	Remaining []PieceDTO   `json:"remaining"`
}

// SolveResult 一整個托盤的結果
type SolveResult struct {
	Lines     int           `json:"lines"`   // 分數加總
	Cleared   int           `json:"cleared"` // 實際消除線數
	Moves     []DecisionDTO `json:"moves"`
	Abandoned []PieceDTO    `json:"abandoned"`
	Board     [][]int       `json:"board"`
	BoardB64U string        `json:"board_b64u"`
}

// TrayDTO 自我對弈中的一個托盤
type TrayDTO struct {
	Dealt  []PieceDTO  `json:"dealt"`
	Result SolveResult `json:"result"`
}

// PlayResult 一局自我對弈的對外結構
type PlayResult struct {
	Game      string    `json:"game"`
	Trays     int       `json:"trays"`
	Pieces    int       `json:"pieces"`
	Lines     int       `json:"lines"`
	Cleared   int       `json:"cleared"`
	Abandoned int       `json:"abandoned"`
	Over      bool      `json:"over"`
	Board     []string  `json:"board"`         // 終局盤面，每列一個字串 (# 佔用 . 空)
	Log       []TrayDTO `json:"log,omitempty"` // 只有 moves=true 才回
	State     PlayState `json:"play_state"`
}

// PlayState 開局與結束時的 RNG 快照，供回放/續玩
type PlayState struct {
	StartCoreSnapB64U string `json:"start_b64u"`
	AfterCoreSnapB64U string `json:"after_b64u"`
}

func NewPieceDTO(p search.Piece) PieceDTO {
	return PieceDTO{Name: p.Name, Source: p.Source, Shape: toInts(p.Shape.Rows2D())}
}

func NewPiecesDTO(ps []search.Piece) []PieceDTO {
	out := make([]PieceDTO, len(ps))
	for i, p := range ps {
		out[i] = NewPieceDTO(p)
	}
	return out
}

func NewDecisionDTO(d search.Decision) DecisionDTO {
	dto := DecisionDTO{
		Placed:    d.Placed,
		Index:     d.Index,
		Source:    d.Source,
		Score:     d.Score,
		Cleared:   d.Cleared,
		Board:     toInts(d.Board.Rows2D()),
		BoardB64U: corefmt.EncodeBoard(d.Board),
		Remaining: NewPiecesDTO(d.Remaining),
	}
	if d.Placed {
		p := NewPieceDTO(d.Piece)
		pos := d.Pos
		dto.Piece = &p
		dto.Pos = &pos
	}
	return dto
}

func NewSolveResultDTO(r search.Result) SolveResult {
	moves := make([]DecisionDTO, len(r.Moves))
	for i, m := range r.Moves {
		moves[i] = NewDecisionDTO(m)
	}
	return SolveResult{
		Lines:     r.Lines(),
		Cleared:   r.ClearedLines(),
		Moves:     moves,
		Abandoned: NewPiecesDTO(r.Abandoned),
		Board:     toInts(r.Board.Rows2D()),
		BoardB64U: corefmt.EncodeBoard(r.Board),
	}
}

// BoardLines 盤面轉成每列一個字串
func BoardLines(b grid.Board) []string {
	return strings.Split(b.String(), "\n")
}

// toInts [][]uint8 直接 encode 會變成 base64 字串，對外一律轉成 [][]int
func toInts(m [][]uint8) [][]int {
	out := make([][]int, len(m))
	for r, row := range m {
		out[r] = make([]int, len(row))
		for c, v := range row {
			out[r][c] = int(v)
		}
	}
	return out
}
