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

// Package app 管理長期運行元件（HTTP server、背景 worker）的啟動與關閉。
package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const DefaultShutdownTimeout = 5 * time.Second

// App 同時啟動所有 Component；收到 SIGINT/SIGTERM、ctx 結束或任一元件返回時，
// 在 ShutdownTimeout 內依序呼叫每個元件的 Shutdown。
type App struct {
	comps []Component

	ShutdownTimeout time.Duration
}

func New() *App { return &App{ShutdownTimeout: DefaultShutdownTimeout} }

func NewWith(comps ...Component) *App {
	a := New()
	for _, c := range comps {
		a.Register(c)
	}
	return a
}

func (a *App) Register(c Component) {
	a.comps = append(a.comps, c)
}

// Run 阻塞直到收到終止信號或任一元件返回
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext ctx 結束視為正常關閉並回傳 nil；元件先返回時回傳該元件的錯誤。
// Shutdown 的錯誤會一併 join 回傳。
func (a *App) RunContext(ctx context.Context) error {
	errCh := make(chan error, len(a.comps))
	for _, c := range a.comps {
		go func(c Component) {
			errCh <- c.Run()
		}(c)
	}

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
	}
	return errors.Join(runErr, a.shutdown())
}

func (a *App) shutdown() error {
	td := a.ShutdownTimeout
	if td <= 0 {
		td = DefaultShutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), td)
	defer cancel()
	var errList []error
	for _, c := range a.comps {
		if err := c.Shutdown(ctx); err != nil {
			errList = append(errList, err)
		}
	}
	return errors.Join(errList...)
}
