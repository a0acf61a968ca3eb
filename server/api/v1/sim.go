package v1

import (
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"net/http"

	"github.com/zintix-labs/blocklab"
	"github.com/zintix-labs/blocklab/dto"
	"github.com/zintix-labs/blocklab/errs"
	"github.com/zintix-labs/blocklab/stats"
)

// SimResponse /v1/sim 回應
type SimResponse struct {
	Stats    *stats.StatReport `json:"stats"`
	Seed     int64             `json:"seed"`
	Workers  int               `json:"workers"`
	UsedTime int64             `json:"used_ms"`
}

// Sim GET|POST /v1/sim：自我對弈統計。
// workers > 1 時每個 worker 跑 games 局，總局數為 games*workers。
func (h *Handler) Sim(w http.ResponseWriter, r *http.Request) {
	req, err := dto.DecodeSimRequest(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.validSim(req); err != nil {
		h.fail(w, r, err)
		return
	}
	if req.Seed == nil {
		rnd, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
		if err != nil {
			h.fail(w, r, errs.NewFatal("seed generate failed"))
			return
		}
		v := rnd.Int64()
		req.Seed = &v
	}

	var sim *blocklab.Simulator
	if len(req.Config) != 0 {
		sim, err = h.lab.NewSimulatorByJSON(req.Config, *req.Seed)
	} else {
		sim, err = h.lab.NewSimulatorWithSeed(req.Game, *req.Seed)
	}
	if err != nil {
		h.fail(w, r, errs.Wrap(err, "build simulator err"))
		return
	}

	var (
		st   *stats.StatReport
		used int64
	)
	if req.Workers == 1 {
		rep, d, err := sim.Sim(req.Games, req.MaxTrays, false)
		if err != nil {
			h.fail(w, r, errs.Wrap(err, "simulate err"))
			return
		}
		st, used = rep, d.Milliseconds()
	} else {
		rep, d, err := sim.SimMP(req.Games, req.MaxTrays, req.Workers, false)
		if err != nil {
			h.fail(w, r, errs.Wrap(err, "simulate err"))
			return
		}
		st, used = rep, d.Milliseconds()
	}
	h.writeJSON(w, r, SimResponse{Stats: st, Seed: *req.Seed, Workers: req.Workers, UsedTime: used})
}

// validSim 補預設值並檢查上限
func (h *Handler) validSim(req *dto.SimRequest) error {
	if req.Game == "" && len(req.Config) == 0 {
		return errs.NewWarn("game or cfg is required")
	}
	if req.Game != "" && len(req.Config) != 0 {
		return errs.NewWarn("game and cfg are mutually exclusive")
	}
	if req.Workers == 0 {
		req.Workers = 1
	}
	if req.Workers < 1 || req.Workers > h.cfg.MaxWorkers {
		return errs.Warnf("workers must be between 1 and %d", h.cfg.MaxWorkers)
	}
	if req.MaxTrays == 0 {
		req.MaxTrays = blocklab.DefaultMaxTrays
	}
	if req.MaxTrays < 1 || req.MaxTrays > blocklab.DefaultMaxTrays {
		return errs.Warnf("max_trays must be between 1 and %d", blocklab.DefaultMaxTrays)
	}
	if req.Games < 1 || req.Games > h.cfg.MaxGames || req.Games*req.Workers > h.cfg.MaxGames {
		return errs.NewWarn(fmt.Sprintf("games*workers must be between 1 and %d", h.cfg.MaxGames))
	}
	return nil
}
