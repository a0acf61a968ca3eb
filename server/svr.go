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

// Package server 組裝並啟動 blocklab 的 HTTP 服務。
//
// 這裡只負責「驗證設定 → 建 server → 註冊路由 → 跑生命週期」；
// 要把路由掛進既有服務時，直接呼叫 api.RegisterRoutes 即可。
package server

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/zintix-labs/blocklab/errs"
	"github.com/zintix-labs/blocklab/server/api"
	"github.com/zintix-labs/blocklab/server/app"
	"github.com/zintix-labs/blocklab/server/netsvr"
	"github.com/zintix-labs/blocklab/server/svrcfg"
)

// Run 以內建的 chi server 啟動，阻塞直到收到終止信號
func Run(sCfg *svrcfg.SvrCfg) error {
	if err := sCfg.Valid(); err != nil {
		// logger 可能不可用，直接寫 stderr
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	svr := netsvr.NewChiServer(sCfg.Addr, netsvr.DefaultTimeouts)
	return run(sCfg, svr, "listening on http://localhost"+svr.Address())
}

// RunWithSvr 使用呼叫端注入的 NetSvr（自訂 listener、timeout、TLS 等）
func RunWithSvr(sCfg *svrcfg.SvrCfg, svr netsvr.NetSvr) error {
	if err := sCfg.Valid(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	if svr == nil {
		err := errs.NewFatal("svr is required")
		sCfg.Log.Error(err.Error())
		return err
	}
	if s, ok := svr.(*netsvr.ChiAdapter); ok && !s.Ready() {
		err := errs.NewFatal("default server is not ready")
		sCfg.Log.Error(err.Error())
		return err
	}
	return run(sCfg, svr, "listening")
}

func run(sCfg *svrcfg.SvrCfg, svr netsvr.NetSvr, msg string) error {
	h, err := api.RegisterRoutes(svr, sCfg)
	if err != nil {
		sCfg.Log.Error("register routes failed", slog.Any("err", err))
		return err
	}
	defer h.Close()

	sCfg.Log.Info("[blocklab] "+msg, slog.Int("pool_size", sCfg.PoolSize), slog.Int("max_workers", sCfg.MaxWorkers))
	if err := app.NewWith(svr).Run(); err != nil {
		sCfg.Log.Error("app stopped", slog.Any("err", err))
		return err
	}
	sCfg.Log.Info("[blocklab] stopped")
	return nil
}
