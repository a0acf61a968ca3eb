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

// Package perf 給 CLI 用的 pprof 包裝：執行一次工作並寫出對應的 profile。
package perf

import (
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"

	"github.com/zintix-labs/blocklab/errs"
)

// DefaultDir profile 寫入目錄
const DefaultDir = "build/profiling"

// Modes 可用的 profile 種類；空字串代表不做 profiling
var Modes = []string{"", "cpu", "heap", "allocs"}

// Run 依 mode 執行 exe 並寫出 <dir>/<mode>.pprof。
// cpu 在執行期間取樣；heap 與 allocs 在 exe 結束後拍快照。
// exe 的錯誤優先回傳。
func Run(exe func() error, mode string, dir string) error {
	switch mode {
	case "":
		return exe()
	case "cpu":
		f, err := create(dir, mode)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return errs.Wrap(err, "start cpu profile")
		}
		defer pprof.StopCPUProfile()
		return exe()
	case "heap", "allocs":
		if err := exe(); err != nil {
			return err
		}
		f, err := create(dir, mode)
		if err != nil {
			return err
		}
		defer f.Close()
		if mode == "heap" {
			// 快照前先 GC，讓 in-use 貼近存活物件
			runtime.GC()
		}
		if err := pprof.Lookup(mode).WriteTo(f, 0); err != nil {
			return errs.Wrap(err, "write "+mode+" profile")
		}
		return nil
	default:
		return errs.Warnf("unknown pprof mode %q (cpu|heap|allocs)", mode)
	}
}

func create(dir string, mode string) (*os.File, error) {
	if dir == "" {
		dir = DefaultDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errs.Wrap(err, "create profiling dir")
	}
	f, err := os.Create(filepath.Join(dir, mode+".pprof"))
	if err != nil {
		return nil, errs.Wrap(err, "create "+mode+" profile")
	}
	return f, nil
}
