package v1

import (
	"context"
	"net/http"

	"github.com/zintix-labs/blocklab/dto"
)

// Play GET|POST /v1/play：從機台池借一台機台自我對弈一局。
// 帶 start_b64u 時從該狀態回放。
func (h *Handler) Play(w http.ResponseWriter, r *http.Request) {
	req, err := dto.DecodePlayRequest(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.PlayTimeout)
	defer cancel()

	res, err := h.rt.Play(ctx, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, r, res)
}

// Games GET /v1/games：目錄中的遊戲摘要
func (h *Handler) Games(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, h.lab.Summary())
}

// Metrics GET /v1/metrics：每款遊戲機台池的快照
func (h *Handler) Metrics(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, h.rt.Metrics())
}
