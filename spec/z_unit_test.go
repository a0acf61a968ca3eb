package spec

import (
	"errors"
	"strings"
	"testing"

	"github.com/zintix-labs/blocklab/errs"
)

const validYAML = `
game_name: mini
board: {rows: 4, cols: 4}
tray_size: 2
pieces:
  - {name: dot, weight: 3, shape: ["#"]}
  - {name: l3,  weight: 1, shape: ["#.", "##"]}
`

func TestGetGameSettingByYAML(t *testing.T) {
	gs, err := GetGameSettingByYAML([]byte(validYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gs.MaxTray != 3 {
		t.Fatalf("max_tray default: got %d want 3", gs.MaxTray)
	}
	if gs.Driver.MaxCaptureRetries != defaultMaxCaptureRetries || gs.Driver.RetryDelay() != defaultRetryDelay {
		t.Fatalf("driver defaults not applied: %+v", gs.Driver)
	}
	p, ok := gs.Piece("l3")
	if !ok || p.Shape.Rows != 2 || p.Shape.Cols != 2 || p.Shape.Cells() != 3 {
		t.Fatalf("unexpected l3: %+v", p)
	}
	if w := gs.Weights(); len(w) != 2 || w[0] != 3 || w[1] != 1 {
		t.Fatalf("unexpected weights: %v", w)
	}
	if b := gs.Board.Start(); b.Rows != 4 || b.Filled() != 0 {
		t.Fatalf("unexpected start board: %+v", b)
	}
}

func TestGetGameSettingByJSON(t *testing.T) {
	raw := `{"game_name":"j","board":{"rows":3,"cols":3},"tray_size":1,"pieces":[{"name":"dot","weight":1,"shape":["#"]}]}`
	if _, err := GetGameSettingByJSON([]byte(raw)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := GetGameSettingByJSON([]byte(`{"game_name":"j","bogus":1}`)); err == nil {
		t.Fatalf("expected error for unknown field")
	}
}

func TestGameSettingRejects(t *testing.T) {
	cases := map[string]string{
		"unknown field": validYAML + "bogus: 1\n",
		"ragged piece":  strings.Replace(validYAML, `["#.", "##"]`, `["#.", "#"]`, 1),
		"zero weight":   strings.Replace(validYAML, "weight: 3", "weight: 0", 1),
		"dup name":      strings.Replace(validYAML, "name: l3", "name: dot", 1),
		"too large":     strings.Replace(validYAML, `["#"]`, `["#####"]`, 1),
		"zero tray":     strings.Replace(validYAML, "tray_size: 2", "tray_size: 0", 1),
		"empty board":   strings.Replace(validYAML, "rows: 4", "rows: 0", 1),
		"bad init":      strings.Replace(validYAML, "board: {rows: 4, cols: 4}", "board: {rows: 4, cols: 4, init: [\"##\"]}", 1),
	}
	for name, raw := range cases {
		if _, err := GetGameSettingByYAML([]byte(raw)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestRaggedPieceIsPrecondition(t *testing.T) {
	raw := strings.Replace(validYAML, `["#.", "##"]`, `["#.", "#"]`, 1)
	_, err := GetGameSettingByYAML([]byte(raw))
	if !errors.Is(err, errs.ErrPrecondition) {
		t.Fatalf("expected precondition cause, got %v", err)
	}
}

func TestBoardInitPattern(t *testing.T) {
	raw := strings.Replace(validYAML, "board: {rows: 4, cols: 4}", "board: {rows: 2, cols: 3, init: [\"#..\", \"...\"]}", 1)
	raw = strings.Replace(raw, `["#.", "##"]`, `["##"]`, 1)
	gs, err := GetGameSettingByYAML([]byte(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b := gs.Board.Start()
	if !b.At(0, 0) || b.Filled() != 1 {
		t.Fatalf("unexpected start board:\n%s", b)
	}
	b.Cells[1] = 1
	if gs.Board.Start().Filled() != 1 {
		t.Fatalf("Start must return a copy")
	}
}
