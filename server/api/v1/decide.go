package v1

import (
	"context"
	"net/http"

	"github.com/zintix-labs/blocklab/dto"
	"github.com/zintix-labs/blocklab/errs"
	"github.com/zintix-labs/blocklab/sdk/grid"
	"github.com/zintix-labs/blocklab/sdk/search"
)

// Decide POST /v1/decide：單步決策，回傳選中的方塊、位置與消行後盤面
func (h *Handler) Decide(w http.ResponseWriter, r *http.Request) {
	board, tray, err := h.parseDecide(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	// 單步搜尋受 MaxBoardSide 與 MaxTray 限制，工作量有上限
	d, err := search.SelectBestShape(board, tray)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, r, dto.NewDecisionDTO(d))
}

// Solve POST /v1/solve：把整個托盤依序放完（或放到沒有方塊放得下）
func (h *Handler) Solve(w http.ResponseWriter, r *http.Request) {
	board, tray, err := h.parseDecide(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.PlayTimeout)
	defer cancel()
	res, err := search.PlayTrayContext(ctx, board, tray)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, r, dto.NewSolveResultDTO(res))
}

// parseDecide game 有值時可以用方塊名稱，且盤面尺寸必須與該遊戲一致；
// 沒有 game 時盤面邊長不得超過 MaxBoardSide。托盤一律不得超過 MaxTray。
func (h *Handler) parseDecide(r *http.Request) (grid.Board, []search.Piece, error) {
	req, err := dto.DecodeDecideRequest(r)
	if err != nil {
		return grid.Board{}, nil, err
	}
	if n := len(req.Tray); n > h.cfg.MaxTray {
		return grid.Board{}, nil, errs.Preconditionf("tray has %d pieces, limit is %d", n, h.cfg.MaxTray)
	}
	if req.Game == "" {
		board, tray, err := req.Parse(nil)
		if err != nil {
			return grid.Board{}, nil, err
		}
		if side := h.cfg.MaxBoardSide; board.Rows > side || board.Cols > side {
			return grid.Board{}, nil, errs.Preconditionf("board is %dx%d, limit is %dx%d",
				board.Rows, board.Cols, side, side)
		}
		return board, tray, nil
	}
	gs, err := h.lab.Setting(req.Game)
	if err != nil {
		return grid.Board{}, nil, err
	}
	lookup, err := h.lab.ShapeLookup(req.Game)
	if err != nil {
		return grid.Board{}, nil, err
	}
	board, tray, err := req.Parse(lookup)
	if err != nil {
		return grid.Board{}, nil, err
	}
	if board.Rows != gs.Board.Rows || board.Cols != gs.Board.Cols {
		return grid.Board{}, nil, errs.Preconditionf("board is %dx%d, game %s expects %dx%d",
			board.Rows, board.Cols, gs.GameName, gs.Board.Rows, gs.Board.Cols)
	}
	return board, tray, nil
}
