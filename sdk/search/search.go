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

// Package search 實作單步貪婪的放置搜尋：
// 對托盤中每個方塊窮舉盤面上所有放置點，以「放置後完整的列數+欄數」為分數，
// 選出全域最高分的 (方塊, 放置點)，套用放置並消行。
//
// 平手一律保留「先掃到」的那一個：放置點以 row-major、欄遞增順序掃描；
// 方塊以托盤順序掃描。
package search

import (
	"context"
	"fmt"

	"github.com/zintix-labs/blocklab/errs"
	"github.com/zintix-labs/blocklab/sdk/grid"
)

// NoScore 無可行放置點時回報的分數
const NoScore = -1

// Piece 托盤中的一個方塊
//
//   - Shape: 佔用遮罩
//   - Source: 來源位置標記（例如托盤槽位），搜尋本身不解讀，原樣帶回給手勢層
//   - Name: 選填，供紀錄與除錯
type Piece struct {
	Shape  grid.Shape
	Source int
	Name   string
}

// Decision 一次選擇的結果
//
// Placed 為 false 時代表托盤中沒有任何方塊放得下：Board 為原盤面、Index 為 -1，
// Remaining 為原托盤的副本。這是正常結果而不是錯誤。
type Decision struct {
	Board     grid.Board   // 放置並消行後的盤面
	Placed    bool         // 是否有放置
	Index     int          // 被放置方塊在「本次輸入托盤」中的 index
	Source    int          // 被放置方塊的來源標記
	Piece     Piece        // 被放置的方塊
	Pos       grid.Pos     // 放置點（shape 左上角）
	Score     int          // 放置後、消行前的完整線數
	Cleared   grid.Cleared // 實際消除的列/欄
	Remaining []Piece      // 移除已放置方塊後的托盤（新 slice）
}

// Result PlayTray 的結果
type Result struct {
	Board     grid.Board // 最終盤面
	Moves     []Decision // 依序的每一步
	Abandoned []Piece    // 放不下而被放棄的方塊
}

// FindBestPlacement 窮舉 shape 外框完全落在盤面內的所有放置點，
// 回傳分數最高者；平手保留先掃到的。無可行點時 ok=false、score=NoScore。
// b 或 s 結構不完整（零尺寸、空遮罩、長度不符）時一律視為無可行點；
// 需要區分原因請用 SelectBestShape，它會回傳 errs.ErrPrecondition。
//
// 掃描範圍由 shape 的外框決定（即使邊框上有空格），
// row ∈ [0, b.Rows-s.Rows]，col ∈ [0, b.Cols-s.Cols]。
func FindBestPlacement(b grid.Board, s grid.Shape) (pos grid.Pos, score int, ok bool) {
	if b.Validate() != nil || s.Validate() != nil {
		return grid.Pos{}, NoScore, false
	}
	return findBest(b, s)
}

// findBest 呼叫端已驗證 b 與 s
func findBest(b grid.Board, s grid.Shape) (pos grid.Pos, score int, ok bool) {
	score = NoScore
	for r := 0; r <= b.Rows-s.Rows; r++ {
		for c := 0; c <= b.Cols-s.Cols; c++ {
			if !grid.CanPlace(b, s, r, c) {
				continue
			}
			sc := grid.LinesAfter(b, s, r, c)
			if sc > score {
				score = sc
				pos = grid.Pos{Row: r, Col: c}
				ok = true
			}
		}
	}
	return pos, score, ok
}

// SelectBestShape 對托盤每個方塊執行 FindBestPlacement，取全域最高分者，
// 套用放置並消行後回傳。
//
// 前置條件：盤面與每個 shape 都必須結構完整，托盤不可為空；違反時回傳
// errs.ErrPrecondition。盤面與托盤不會被修改。
func SelectBestShape(b grid.Board, tray []Piece) (Decision, error) {
	if err := validate(b, tray); err != nil {
		return Decision{}, err
	}

	bestScore := NoScore
	bestIdx := -1
	var bestPos grid.Pos
	for i, p := range tray {
		pos, score, ok := findBest(b, p.Shape)
		if ok && score > bestScore {
			bestScore = score
			bestIdx = i
			bestPos = pos
		}
	}

	if bestIdx < 0 {
		return Decision{
			Board:     b,
			Placed:    false,
			Index:     -1,
			Source:    -1,
			Score:     NoScore,
			Remaining: append([]Piece(nil), tray...),
		}, nil
	}

	best := tray[bestIdx]
	placed, err := grid.Place(b, best.Shape, bestPos.Row, bestPos.Col)
	if err != nil {
		// 搜尋只回報可行點，走到這裡代表內部不一致
		return Decision{}, errs.Wrap(err, "apply best placement")
	}
	cleared, cl := grid.ClearLines(placed)

	remaining := make([]Piece, 0, len(tray)-1)
	remaining = append(remaining, tray[:bestIdx]...)
	remaining = append(remaining, tray[bestIdx+1:]...)

	return Decision{
		Board:     cleared,
		Placed:    true,
		Index:     bestIdx,
		Source:    best.Source,
		Piece:     best,
		Pos:       bestPos,
		Score:     bestScore,
		Cleared:   cl,
		Remaining: remaining,
	}, nil
}

// PlayTray 重複呼叫 SelectBestShape，直到托盤用完或沒有方塊放得下。
// 每個方塊最多被放置一次；放不下的方塊記在 Abandoned。
func PlayTray(b grid.Board, tray []Piece) (Result, error) {
	return PlayTrayContext(context.Background(), b, tray)
}

// PlayTrayContext 同 PlayTray，每一步之前檢查 ctx；逾時或取消時回傳包住 ctx.Err() 的錯誤
func PlayTrayContext(ctx context.Context, b grid.Board, tray []Piece) (Result, error) {
	if err := validate(b, tray); err != nil {
		return Result{}, err
	}
	res := Result{Board: b, Moves: make([]Decision, 0, len(tray))}
	for len(tray) > 0 {
		if err := ctx.Err(); err != nil {
			return Result{}, errs.WrapWithExtra(err, "play tray interrupted", fmt.Sprintf("placed=%d", len(res.Moves)))
		}
		d, err := SelectBestShape(res.Board, tray)
		if err != nil {
			return Result{}, err
		}
		if !d.Placed {
			res.Abandoned = d.Remaining
			break
		}
		res.Moves = append(res.Moves, d)
		res.Board = d.Board
		tray = d.Remaining
	}
	return res, nil
}

// Lines 本次所有步驟的分數加總
func (r Result) Lines() int {
	n := 0
	for _, m := range r.Moves {
		n += m.Score
	}
	return n
}

// ClearedLines 本次實際消除的線數加總
func (r Result) ClearedLines() int {
	n := 0
	for _, m := range r.Moves {
		n += m.Cleared.Count()
	}
	return n
}

func validate(b grid.Board, tray []Piece) error {
	if err := b.Validate(); err != nil {
		return err
	}
	if len(tray) == 0 {
		return errs.Preconditionf("empty tray")
	}
	for i, p := range tray {
		if err := p.Shape.Validate(); err != nil {
			return errs.WrapWithExtra(err, "invalid piece in tray", fmt.Sprintf("index=%d source=%d", i, p.Source))
		}
	}
	return nil
}
