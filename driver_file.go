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

package blocklab

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/zintix-labs/blocklab/errs"
	"github.com/zintix-labs/blocklab/sdk/grid"
	"github.com/zintix-labs/blocklab/sdk/search"
	"gopkg.in/yaml.v3"
)

// snapshotFile 錄好的擷取結果（YAML；JSON 也是合法 YAML）
//
//	snapshots:
//	  - board: ["#.........", ...]
//	    tray:
//	      - {name: dot}
//	      - {shape: ["##", "#."], source: 2}
type snapshotFile struct {
	Snapshots []snapshotEntry `yaml:"snapshots"`
}

type snapshotEntry struct {
	Board []string    `yaml:"board"`
	Tray  []trayEntry `yaml:"tray"`
}

type trayEntry struct {
	Name   string   `yaml:"name"`
	Shape  []string `yaml:"shape"`
	Source *int     `yaml:"source"`
}

// FileCapturer 依序回放錄好的盤面；用完後回傳 io.EOF
type FileCapturer struct {
	mu    sync.Mutex
	snaps []Snapshot
	next  int
}

// NewFileCapturer 從 r 讀取快照清單。compressed 為 true 時 r 是 zstd 壓縮內容。
// lookup 用來解析以名稱指定的方塊，可為 nil（此時只能用 shape）。
func NewFileCapturer(r io.Reader, compressed bool, lookup func(string) (grid.Shape, bool)) (*FileCapturer, error) {
	if compressed {
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, errs.Wrap(err, "open zstd snapshots")
		}
		defer zr.Close()
		r = zr
	}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f snapshotFile
	if err := dec.Decode(&f); err != nil {
		return nil, errs.NewFatal("decode snapshots: " + err.Error())
	}
	if len(f.Snapshots) == 0 {
		return nil, errs.NewFatal("snapshot file has no snapshots")
	}
	snaps := make([]Snapshot, 0, len(f.Snapshots))
	for i, e := range f.Snapshots {
		s, err := e.snapshot(lookup)
		if err != nil {
			return nil, errs.WrapWithExtra(err, "invalid snapshot", fmt.Sprintf("index=%d", i))
		}
		snaps = append(snaps, s)
	}
	return &FileCapturer{snaps: snaps}, nil
}

// OpenFileCapturer 從 fsys 開啟 name；副檔名 .zst 視為 zstd 壓縮
func OpenFileCapturer(fsys fs.FS, name string, lookup func(string) (grid.Shape, bool)) (*FileCapturer, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, errs.Wrap(err, "open snapshots")
	}
	defer f.Close()
	return NewFileCapturer(f, strings.HasSuffix(name, ".zst"), lookup)
}

// Capture 回傳下一個快照
func (fc *FileCapturer) Capture(ctx context.Context) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	fc.mu.Lock()
	defer fc.mu.Unlock()
	if fc.next >= len(fc.snaps) {
		return Snapshot{}, io.EOF
	}
	s := fc.snaps[fc.next]
	fc.next++
	return Snapshot{Board: s.Board.Clone(), Tray: append([]search.Piece(nil), s.Tray...)}, nil
}

// Len 快照總數
func (fc *FileCapturer) Len() int { return len(fc.snaps) }

func (e snapshotEntry) snapshot(lookup func(string) (grid.Shape, bool)) (Snapshot, error) {
	b, err := grid.ParseBoard(strings.Join(e.Board, "\n"))
	if err != nil {
		return Snapshot{}, err
	}
	tray := make([]search.Piece, 0, len(e.Tray))
	for i, t := range e.Tray {
		p := search.Piece{Source: i, Name: t.Name}
		if t.Source != nil {
			p.Source = *t.Source
		}
		switch {
		case t.Name != "" && len(t.Shape) > 0:
			return Snapshot{}, errs.Preconditionf("tray[%d]: name and shape are exclusive", i)
		case len(t.Shape) > 0:
			s, err := grid.ParseShape(t.Shape)
			if err != nil {
				return Snapshot{}, err
			}
			p.Shape = s
		case t.Name != "":
			if lookup == nil {
				return Snapshot{}, errs.Preconditionf("tray[%d]: piece name %q needs a game", i, t.Name)
			}
			s, ok := lookup(t.Name)
			if !ok {
				return Snapshot{}, errs.Preconditionf("tray[%d]: unknown piece %q", i, t.Name)
			}
			p.Shape = s
		default:
			return Snapshot{}, errs.Preconditionf("tray[%d]: name or shape required", i)
		}
		tray = append(tray, p)
	}
	return Snapshot{Board: b, Tray: tray}, nil
}
