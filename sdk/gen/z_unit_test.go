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

package gen

import (
	"testing"

	"github.com/zintix-labs/blocklab/sdk/core"
	"github.com/zintix-labs/blocklab/spec"
)

const cfg = `
game_name: gen
board: {rows: 5, cols: 5}
tray_size: 3
pieces:
  - {name: dot, weight: 1, shape: ["#"]}
  - {name: bar, weight: 1, shape: ["###"]}
`

func setting(t *testing.T) *spec.GameSetting {
	t.Helper()
	gs, err := spec.GetGameSettingByYAML([]byte(cfg))
	if err != nil {
		t.Fatalf("setting: %v", err)
	}
	return gs
}

func TestTrayGeneratorSourcesAndNames(t *testing.T) {
	gs := setting(t)
	tg, err := NewTrayGenerator(core.New(core.Default().New(5)), gs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 50; i++ {
		tray := tg.Next()
		if len(tray) != 3 {
			t.Fatalf("tray size %d", len(tray))
		}
		for slot, p := range tray {
			if p.Source != slot {
				t.Fatalf("slot %d has source %d", slot, p.Source)
			}
			if p.Name != "dot" && p.Name != "bar" {
				t.Fatalf("unexpected piece %q", p.Name)
			}
			if err := p.Shape.Validate(); err != nil {
				t.Fatalf("invalid shape: %v", err)
			}
		}
	}
}

func TestTrayGeneratorDeterministic(t *testing.T) {
	gs := setting(t)
	a, _ := NewTrayGenerator(core.New(core.Default().New(77)), gs)
	b, _ := NewTrayGenerator(core.New(core.Default().New(77)), gs)
	for i := 0; i < 20; i++ {
		ta, tb := a.Next(), b.Next()
		for j := range ta {
			if ta[j].Name != tb[j].Name {
				t.Fatalf("tray %d slot %d differs", i, j)
			}
		}
	}
}

func TestTrayGeneratorRequiresInputs(t *testing.T) {
	if _, err := NewTrayGenerator(nil, setting(t)); err == nil {
		t.Fatalf("expected error for nil core")
	}
}
