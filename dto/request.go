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
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/zintix-labs/blocklab/corefmt"
	"github.com/zintix-labs/blocklab/errs"
	"github.com/zintix-labs/blocklab/sdk/grid"
	"github.com/zintix-labs/blocklab/sdk/search"
)

// 防止 body 過大（1MiB）
const maxBody = 1 << 20

// PieceInput 托盤中的一個方塊；name 與 shape 必須恰好提供一個。
//
//   - name: 依遊戲的方塊目錄查找（需同時提供 game）
//   - shape: 直接給二維 0/1 遮罩
//   - source: 來源位置標記，缺省為在托盤中的 index
type PieceInput struct {
	Name   string  `json:"name,omitempty"`
	Shape  [][]int `json:"shape,omitempty"`
	Source *int    `json:"source,omitempty"`
}

// DecideRequest /v1/decide 與 /v1/solve 共用的請求。
//
// 盤面有兩種給法，必須恰好提供一個：
//   - board: 二維 0/1 陣列
//   - board_b64u: corefmt 打包後的 base64url 字串
type DecideRequest struct {
	Game      string       `json:"game,omitempty"`
	Board     [][]int      `json:"board,omitempty"`
	BoardB64U string       `json:"board_b64u,omitempty"`
	Tray      []PieceInput `json:"tray"`
}

// ShapeLookup 依方塊名稱查 shape；由上層綁定到遊戲設定
type ShapeLookup func(name string) (grid.Shape, bool)

// DecodeDecideRequest 只接受 POST JSON；限制 body 大小並拒絕未知欄位。
//
// 這裡只負責解碼，盤面與托盤的結構檢查在 Parse。
func DecodeDecideRequest(r *http.Request) (*DecideRequest, error) {
	if r == nil {
		return nil, errs.NewWarn("nil request")
	}
	if r.Method != http.MethodPost {
		return nil, errs.NewWarn("method not allowed")
	}
	req := new(DecideRequest)
	if err := decodeJSON(r.Body, req); err != nil {
		return nil, err
	}
	return req, nil
}

// Parse 轉成搜尋所需的盤面與托盤。lookup 可為 nil（此時不允許以 name 指定方塊）。
func (dr *DecideRequest) Parse(lookup ShapeLookup) (grid.Board, []search.Piece, error) {
	b, err := dr.board()
	if err != nil {
		return grid.Board{}, nil, err
	}
	if len(dr.Tray) == 0 {
		return grid.Board{}, nil, errs.Preconditionf("tray is empty")
	}
	tray := make([]search.Piece, len(dr.Tray))
	for i, in := range dr.Tray {
		p, err := in.parse(i, lookup)
		if err != nil {
			return grid.Board{}, nil, err
		}
		tray[i] = p
	}
	return b, tray, nil
}

func (dr *DecideRequest) board() (grid.Board, error) {
	has2D, hasB64 := len(dr.Board) != 0, dr.BoardB64U != ""
	switch {
	case has2D && hasB64:
		return grid.Board{}, errs.NewWarn("board and board_b64u are mutually exclusive")
	case has2D:
		m, err := toMatrix(dr.Board)
		if err != nil {
			return grid.Board{}, err
		}
		return grid.BoardFrom(m)
	case hasB64:
		return corefmt.DecodeBoard(dr.BoardB64U)
	default:
		return grid.Board{}, errs.Preconditionf("board is required")
	}
}

func (in PieceInput) parse(idx int, lookup ShapeLookup) (search.Piece, error) {
	p := search.Piece{Source: idx, Name: in.Name}
	if in.Source != nil {
		p.Source = *in.Source
	}
	switch {
	case in.Name != "" && len(in.Shape) != 0:
		return p, errs.NewWarn(fmt.Sprintf("tray[%d]: name and shape are mutually exclusive", idx))
	case len(in.Shape) != 0:
		m, err := toMatrix(in.Shape)
		if err != nil {
			return p, errs.WrapWithExtra(err, "invalid tray shape", fmt.Sprintf("index=%d", idx))
		}
		s, err := grid.NewShape(m)
		if err != nil {
			return p, errs.WrapWithExtra(err, "invalid tray shape", fmt.Sprintf("index=%d", idx))
		}
		p.Shape = s
	case in.Name != "":
		if lookup == nil {
			return p, errs.NewWarn(fmt.Sprintf("tray[%d]: piece name %q requires game", idx, in.Name))
		}
		s, ok := lookup(in.Name)
		if !ok {
			return p, errs.NewWarn(fmt.Sprintf("tray[%d]: unknown piece %q", idx, in.Name))
		}
		p.Shape = s
	default:
		return p, errs.Preconditionf("tray[%d]: name or shape required", idx)
	}
	return p, nil
}

// PlayRequest /v1/play：在伺服器端的機台上跑一局自我對弈
type PlayRequest struct {
	Game       string      `json:"game"`
	MaxTrays   int         `json:"max_trays,omitempty"` // 0 代表用伺服器預設上限
	Moves      bool        `json:"moves,omitempty"`     // 是否回傳每一步
	StartState *StartState `json:"start_state,omitempty"`
}

// StartState 由呼叫端帶入的 RNG 狀態（可選）。
//
//   - 缺省：新局，機台用自己的 RNG 流水。
//   - start_b64u 有值：回放/續玩，機台從該快照 restore 後開局，結束後還原自己的狀態。
//
// 請求只接受 Start；After 只出現在回應中。
type StartState struct {
	StartCoreSnapB64U string `json:"start_b64u,omitempty"`
}

func (ss *StartState) HasPayload() bool {
	return ss != nil && ss.StartCoreSnapB64U != ""
}

// StartSnap 解出起始快照；沒有帶時回傳 nil
func (pr *PlayRequest) StartSnap() ([]byte, error) {
	if !pr.StartState.HasPayload() {
		return nil, nil
	}
	snap, err := corefmt.DecodeBase64URL(pr.StartState.StartCoreSnapB64U)
	if err != nil {
		return nil, errs.WrapWarn(err, "core snap decode failed")
	}
	return snap, nil
}

// DecodePlayRequest 支援 GET（query: game/max_trays/moves/start_b64u）與 POST JSON
func DecodePlayRequest(r *http.Request) (*PlayRequest, error) {
	if r == nil {
		return nil, errs.NewWarn("nil request")
	}
	req := new(PlayRequest)
	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		req.Game = q.Get("game")
		if s := q.Get("max_trays"); s != "" {
			v, err := strconv.Atoi(s)
			if err != nil {
				return nil, errs.NewWarn(fmt.Sprintf("invalid max_trays: %v", err))
			}
			req.MaxTrays = v
		}
		if s := q.Get("moves"); s != "" {
			v, err := strconv.ParseBool(s)
			if err != nil {
				return nil, errs.NewWarn(fmt.Sprintf("invalid moves: %v", err))
			}
			req.Moves = v
		}
		if s := q.Get("start_b64u"); s != "" {
			req.StartState = &StartState{StartCoreSnapB64U: s}
		}
		return req, nil
	case http.MethodPost:
		if err := decodeJSON(r.Body, req); err != nil {
			return nil, err
		}
		return req, nil
	default:
		return nil, errs.NewWarn("method not allowed")
	}
}

// SimRequest /v1/sim：自我對弈統計。
// cfg 有值時以呼叫端自帶的 JSON 設定模擬，否則依 game 從目錄取設定。
type SimRequest struct {
	Game     string          `json:"game,omitempty"`
	Games    int             `json:"games"`
	MaxTrays int             `json:"max_trays"`
	Workers  int             `json:"workers,omitempty"`
	Seed     *int64          `json:"seed,omitempty"`
	Config   json.RawMessage `json:"cfg,omitempty"`
}

// DecodeSimRequest 支援 GET（query: game/games/max_trays/workers/seed）與 POST JSON
func DecodeSimRequest(r *http.Request) (*SimRequest, error) {
	if r == nil {
		return nil, errs.NewWarn("nil request")
	}
	req := new(SimRequest)
	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		req.Game = q.Get("game")
		ints := []struct {
			key string
			dst *int
		}{
			{"games", &req.Games},
			{"max_trays", &req.MaxTrays},
			{"workers", &req.Workers},
		}
		for _, f := range ints {
			if s := q.Get(f.key); s != "" {
				v, err := strconv.Atoi(s)
				if err != nil {
					return nil, errs.NewWarn(fmt.Sprintf("invalid %s: %v", f.key, err))
				}
				*f.dst = v
			}
		}
		if s := q.Get("seed"); s != "" {
			v, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return nil, errs.NewWarn("seed must be int64")
			}
			req.Seed = &v
		}
		return req, nil
	case http.MethodPost:
		if err := decodeJSON(r.Body, req); err != nil {
			return nil, err
		}
		return req, nil
	default:
		return nil, errs.NewWarn("method not allowed")
	}
}

func decodeJSON(body io.Reader, dst any) error {
	if body == nil {
		return errs.NewWarn("empty body")
	}
	dec := json.NewDecoder(io.LimitReader(body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errs.WrapWarn(err, "invalid json")
	}
	return nil
}

// toMatrix JSON 的 [][]int 轉成 grid 使用的 [][]uint8；只接受 0/1
func toMatrix(m [][]int) ([][]uint8, error) {
	out := make([][]uint8, len(m))
	for r, row := range m {
		out[r] = make([]uint8, len(row))
		for c, v := range row {
			if v != 0 && v != 1 {
				return nil, errs.Preconditionf("cell (%d,%d) must be 0 or 1, got %d", r, c, v)
			}
			out[r][c] = uint8(v)
		}
	}
	return out, nil
}
