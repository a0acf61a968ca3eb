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

package catalog

import (
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/zintix-labs/blocklab/configs"
)

const miniYAML = `
game_name: Mini
board: {rows: 3, cols: 3}
tray_size: 1
pieces:
  - {name: dot, weight: 1, shape: ["#"]}
`

func TestCatalogFromEmbedded(t *testing.T) {
	c, err := New(configs.FS)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	gs, err := c.Setting(configs.DefaultGame)
	if err != nil {
		t.Fatalf("default game missing: %v", err)
	}
	if gs.Board.Rows != 10 || gs.Board.Cols != 10 || gs.TraySize != 3 {
		t.Fatalf("unexpected default setting: %+v", gs.Board)
	}
	if len(c.Summary()) != len(c.Names()) {
		t.Fatalf("summary/names mismatch")
	}
}

func TestCatalogLookupIsCaseInsensitive(t *testing.T) {
	c, err := New(fstest.MapFS{"mini.yaml": {Data: []byte(miniYAML)}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := c.Get("  MINI "); !ok {
		t.Fatalf("expected case-insensitive lookup")
	}
	if _, err := c.Setting("nope"); err == nil {
		t.Fatalf("expected error for unknown game")
	}
}

func TestCatalogRejects(t *testing.T) {
	cases := map[string][]fstest.MapFS{
		"dup name": {{
			"a.yaml": {Data: []byte(miniYAML)},
			"b.yaml": {Data: []byte(miniYAML)},
		}},
		"dup file": {
			{"a.yaml": {Data: []byte(miniYAML)}},
			{"a.yaml": {Data: []byte(miniYAML)}},
		},
		"subdir": {{"sub/a.yaml": {Data: []byte(miniYAML)}}},
		"broken": {{"a.yaml": {Data: []byte("game_name: [")}}},
		"empty":  {{"readme.txt": {Data: []byte("hi")}}},
	}
	for name, srcs := range cases {
		in := make([]fs.FS, len(srcs))
		for i, s := range srcs {
			in[i] = s
		}
		if _, err := New(in...); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}
