package v1

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/zintix-labs/blocklab"
	"github.com/zintix-labs/blocklab/errs"
	"github.com/zintix-labs/blocklab/server/httperr"
	"github.com/zintix-labs/blocklab/server/svrcfg"
)

// Handler v1 所有端點共用的依賴
type Handler struct {
	lab *blocklab.Blocklab
	rt  *blocklab.Runtime
	cfg *svrcfg.SvrCfg
	log *slog.Logger
}

// NewHandler 建立機台池；sCfg 必須已經 Valid
func NewHandler(sCfg *svrcfg.SvrCfg) (*Handler, error) {
	if sCfg == nil || sCfg.Blocklab == nil {
		return nil, errs.NewFatal("blocklab is required")
	}
	rt, err := sCfg.Blocklab.BuildRuntime(sCfg.PoolSize)
	if err != nil {
		return nil, errs.Wrap(err, "build play runtime error")
	}
	return &Handler{lab: sCfg.Blocklab, rt: rt, cfg: sCfg, log: sCfg.Log}, nil
}

// Close 關閉機台池
func (h *Handler) Close() {
	h.rt.Close()
}

// fail 寫回錯誤並記錄 5xx
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	httperr.Log(h.log, r.Method+" "+r.URL.Path, err)
	httperr.Errs(w, err)
}

// writeJSON 先編碼到記憶體再寫出，避免寫到一半才失敗
func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		h.fail(w, r, errs.Wrap(err, "encode response"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(append(b, '\n'))
}
