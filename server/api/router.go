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

package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	v1 "github.com/zintix-labs/blocklab/server/api/v1"
	"github.com/zintix-labs/blocklab/server/netsvr"
	"github.com/zintix-labs/blocklab/server/netsvr/middleware"
	"github.com/zintix-labs/blocklab/server/svrcfg"
)

// Endpoint 首頁列出的端點說明
type Endpoint struct {
	Method string `json:"method"`
	Path   string `json:"path"`
	Desc   string `json:"desc"`
}

var endpoints = []Endpoint{
	{"GET", "/v1/games", "list games in the catalog"},
	{"POST", "/v1/decide", "best single placement for a board and tray"},
	{"POST", "/v1/solve", "place a whole tray greedily"},
	{"GET|POST", "/v1/play", "self-play one game (replay with start_b64u)"},
	{"GET|POST", "/v1/sim", "self-play statistics (game or cfg)"},
	{"GET", "/v1/metrics", "machine pool metrics"},
}

// RegisterRoutes 註冊 middleware 與所有路由；回傳的 Handler 持有機台池，關閉服務時要 Close
func RegisterRoutes(svr netsvr.NetSvr, sCfg *svrcfg.SvrCfg) (*v1.Handler, error) {
	registerMiddleware(svr, sCfg.Log)
	registerIndex(svr)
	return registerV1API(svr, sCfg)
}

func registerMiddleware(svr netsvr.NetSvr, log *slog.Logger) {
	svr.Use(middleware.RequestID)
	svr.Use(middleware.AccessLog(log))
	svr.Use(middleware.Recover(log))
	svr.Use(middleware.Compression)
}

func registerIndex(svr netsvr.NetSvr) {
	svr.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"name":      "blocklab",
			"endpoints": endpoints,
		})
	})
}

func registerV1API(svr netsvr.NetSvr, sCfg *svrcfg.SvrCfg) (*v1.Handler, error) {
	h, err := v1.NewHandler(sCfg)
	if err != nil {
		return nil, err
	}
	svr.Group("/v1", func(vOne netsvr.NetRouter) {
		vOne.Get("/games", h.Games)
		vOne.Get("/metrics", h.Metrics)
		vOne.Post("/decide", h.Decide)
		vOne.Post("/solve", h.Solve)
		vOne.Any("/play", h.Play)
		vOne.Any("/sim", h.Sim)
	})
	return h, nil
}
