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

// Package httperr 把 errs 的分級錯誤映射成 HTTP 回應；只屬於 HTTP 邊界層。
package httperr

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/zintix-labs/blocklab/errs"
)

// Body 錯誤回應的 JSON
type Body struct {
	Error string `json:"error"`
	Level string `json:"level,omitempty"`
}

// StatusCode 將錯誤映射成 HTTP status code
//   - ctx timeout/cancel → 504/408
//   - errs.Warn          → 400（請求/參數問題）
//   - errs.Fatal / 其它  → 500
func StatusCode(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	}
	var e *errs.E
	if errors.As(err, &e) && e.ErrLv == errs.Warn {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Errs 寫回 {"error": ..., "level": ...}；err 為 nil 時不做事
func Errs(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	body := Body{Error: err.Error()}
	if e, ok := errs.AsErr(err); ok {
		body.Level = errs.ErrLv(e.ErrLv)
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(StatusCode(err))
	_ = json.NewEncoder(w).Encode(body)
}

// Log 只記錄值得注意的錯誤：5xx 記 error，408/409/429 記 warn；一般 400 交給 access log
func Log(log *slog.Logger, msg string, err error) {
	if err == nil || log == nil {
		return
	}
	status := StatusCode(err)
	switch {
	case status >= 500:
		log.Error(msg, slog.Int("status", status), slog.Any("err", err))
	case status == http.StatusRequestTimeout || status == http.StatusConflict || status == http.StatusTooManyRequests:
		log.Warn(msg, slog.Int("status", status), slog.Any("err", err))
	}
}

// MethodNotAllowed 405
func MethodNotAllowed(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusMethodNotAllowed)
	_ = json.NewEncoder(w).Encode(Body{Error: "method not allowed"})
}
