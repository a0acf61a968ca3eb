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

package corefmt

import (
	"errors"
	"testing"

	"github.com/zintix-labs/blocklab/errs"
	"github.com/zintix-labs/blocklab/sdk/grid"
)

func TestBoardFrameLayout(t *testing.T) {
	b, err := grid.ParseBoard("#..\n.#.\n..#")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	frame := PackBoard(b)
	// rows=3 cols=3, 9 bits: 100 010 001 -> 1000 1000 | 1000 0000
	want := []byte{3, 3, 0x88, 0x80}
	if string(frame) != string(want) {
		t.Fatalf("frame %x, want %x", frame, want)
	}
	got, err := DecodeBoard(EncodeBoard(b))
	if err != nil || !got.Equal(b) {
		t.Fatalf("decode mismatch: %v\n%s", err, got)
	}
}

func TestUnpackBoardRejects(t *testing.T) {
	cases := map[string][]byte{
		"empty":     nil,
		"zero rows": {0, 3},
		"short":     {3, 3, 0x88},
		"long":      {3, 3, 0x88, 0x80, 0x00},
		"padding":   {3, 3, 0x88, 0x81},
		"huge":      {0xff, 0xff, 0x03, 1},
	}
	for name, frame := range cases {
		if _, err := UnpackBoard(frame); !errors.Is(err, errs.ErrPrecondition) {
			t.Fatalf("%s: expected precondition error, got %v", name, err)
		}
	}
}

func TestDecodeBoardBadText(t *testing.T) {
	if _, err := DecodeBoard("***"); err == nil {
		t.Fatalf("expected error for invalid base64url")
	}
	if _, err := DecodeHex("zz"); err == nil {
		t.Fatalf("expected error for invalid hex")
	}
}
