package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunReplaysSnapshots(t *testing.T) {
	dir := t.TempDir()
	src := `
snapshots:
  - board: ["..........", "..........", "..........", "..........", "..........",
            "..........", "..........", "..........", "..........", "#########."]
    tray:
      - {name: dot}
      - {name: i2h}
`
	path := filepath.Join(dir, "session.yaml")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	var buf bytes.Buffer
	if err := run([]string{"-snapshots", path, "-log-mode", "prod"}, &buf); err != nil {
		t.Fatalf("run: %v\n%s", err, buf.String())
	}
	out := buf.String()
	if strings.Count(out, `"msg":"move"`) != 2 {
		t.Fatalf("expected two moves:\n%s", out)
	}
	if !strings.Contains(out, `"msg":"session done"`) || !strings.Contains(out, `"lines":1`) {
		t.Fatalf("missing session summary:\n%s", out)
	}
}

func TestRunRequiresSnapshots(t *testing.T) {
	if err := run(nil, &bytes.Buffer{}); err == nil {
		t.Fatalf("expected error without -snapshots")
	}
	if err := run([]string{"-snapshots", "missing.yaml"}, &bytes.Buffer{}); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
