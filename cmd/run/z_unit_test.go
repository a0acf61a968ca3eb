package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/zintix-labs/blocklab/stats"
)

func TestParseFlagsRejects(t *testing.T) {
	bad := [][]string{
		{"-workers", "0"},
		{"-games", "0"},
		{"-trays", "0"},
		{"-out", "xml"},
		{"-bogus"},
	}
	for _, args := range bad {
		if _, err := parseFlags(args); err == nil {
			t.Fatalf("%v: expected error", args)
		}
	}
}

func TestExecuteJSON(t *testing.T) {
	cfg, err := parseFlags([]string{"-game", "block88", "-games", "4", "-workers", "2", "-trays", "10", "-seed", "9", "-out", "json", "-progress=false"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	var buf bytes.Buffer
	if err := execute(cfg, &buf); err != nil {
		t.Fatalf("execute: %v", err)
	}
	var rep stats.StatReport
	if err := json.Unmarshal(buf.Bytes(), &rep); err != nil {
		t.Fatalf("decode: %v\n%s", err, buf.String())
	}
	if rep.Summary.Games != 8 || rep.Summary.Seed != 9 || rep.Summary.GameName != "block88" {
		t.Fatalf("unexpected summary: %+v", rep.Summary)
	}
}

func TestExecuteSettingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiny.yaml")
	src := "game_name: tiny\nboard: {rows: 4, cols: 4}\ntray_size: 2\npieces:\n  - {name: dot, weight: 1, shape: [\"#\"]}\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := parseFlags([]string{"-cfg", path, "-games", "3", "-trays", "5", "-seed", "1", "-out", "yaml", "-progress=false"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	var buf bytes.Buffer
	if err := execute(cfg, &buf); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte("tiny")) {
		t.Fatalf("report must name the game:\n%s", buf.String())
	}
}
