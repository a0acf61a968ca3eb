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

// Package catalog 掃描一或多個扁平的 fs.FS，解析其中所有 YAML/JSON 遊戲設定，
// 並以 game_name 建立唯一索引。
package catalog

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/zintix-labs/blocklab/errs"
	"github.com/zintix-labs/blocklab/spec"
)

var ErrDupName = errs.NewFatal("duplicate game name")

// Entry 目錄中的一款遊戲
type Entry struct {
	Name       string
	ConfigName string
	Setting    *spec.GameSetting
}

// Summary 對外列舉用
type Summary struct {
	Name     string   `json:"name"`
	Rows     int      `json:"rows"`
	Cols     int      `json:"cols"`
	TraySize int      `json:"tray_size"`
	Pieces   []string `json:"pieces"`
}

type Catalog struct {
	byName map[string]Entry
	names  []string // 穩定排序
}

// New 掃描所有來源；設定檔名或 game_name 重複、子目錄存在、解析失敗皆直接回錯。
func New(src ...fs.FS) (*Catalog, error) {
	if len(src) == 0 {
		return nil, errs.NewFatal("no fs provided")
	}
	c := &Catalog{byName: map[string]Entry{}}
	seenFile := map[string]int{}
	for i, s := range src {
		if s == nil {
			return nil, errs.NewFatal(fmt.Sprintf("fs[%d] is nil", i))
		}
		err := fs.WalkDir(s, ".", func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path == "." {
					return nil
				}
				return errs.NewFatal(fmt.Sprintf("config FS must be flat (no subdirectories): %q", path))
			}
			if !isConfigFile(path) {
				return nil
			}
			if prev, ok := seenFile[path]; ok {
				return errs.NewFatal(fmt.Sprintf("duplicate config %q in fs[%d] and fs[%d]", path, prev, i))
			}
			seenFile[path] = i

			raw, err := fs.ReadFile(s, path)
			if err != nil {
				return errs.Wrap(err, "catalog read file error")
			}
			gs, err := parseGameSettingByExt(path, raw)
			if err != nil {
				return errs.WrapWithExtra(err, "catalog parse file error", path)
			}
			return c.add(Entry{Name: normalize(gs.GameName), ConfigName: path, Setting: gs})
		})
		if err != nil {
			return nil, errs.Wrap(err, "can not create catalog")
		}
	}
	if len(c.names) == 0 {
		return nil, errs.NewFatal("no game config found")
	}
	sort.Strings(c.names)
	return c, nil
}

func (c *Catalog) add(e Entry) error {
	if e.Name == "" {
		return errs.NewFatal("game name required")
	}
	if _, ok := c.byName[e.Name]; ok {
		return ErrDupName
	}
	c.byName[e.Name] = e
	c.names = append(c.names, e.Name)
	return nil
}

// Get 依名稱取得（不分大小寫、忽略前後空白）
func (c *Catalog) Get(name string) (Entry, bool) {
	e, ok := c.byName[normalize(name)]
	return e, ok
}

// Setting 依名稱取得遊戲設定
func (c *Catalog) Setting(name string) (*spec.GameSetting, error) {
	e, ok := c.Get(name)
	if !ok {
		return nil, errs.Warnf("game %q does not exist in catalog", name)
	}
	return e.Setting, nil
}

func (c *Catalog) Names() []string {
	return append([]string(nil), c.names...)
}

func (c *Catalog) Summary() []Summary {
	out := make([]Summary, 0, len(c.names))
	for _, n := range c.names {
		gs := c.byName[n].Setting
		pieces := make([]string, len(gs.Pieces))
		for i, p := range gs.Pieces {
			pieces[i] = p.Name
		}
		out = append(out, Summary{
			Name:     n,
			Rows:     gs.Board.Rows,
			Cols:     gs.Board.Cols,
			TraySize: gs.TraySize,
			Pieces:   pieces,
		})
	}
	return out
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func isConfigFile(path string) bool {
	if strings.HasPrefix(path, ".") {
		return false
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

func parseGameSettingByExt(filename string, raw []byte) (*spec.GameSetting, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return spec.GetGameSettingByYAML(raw)
	case ".json":
		return spec.GetGameSettingByJSON(raw)
	default:
		return nil, errs.NewFatal(fmt.Sprintf("unsupported config format: %q", filename))
	}
}
