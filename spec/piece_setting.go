package spec

import (
	"fmt"
	"strings"

	"github.com/zintix-labs/blocklab/errs"
	"github.com/zintix-labs/blocklab/sdk/grid"
)

// PieceSetting 方塊目錄中的一個方塊
//
//   - Name: 唯一名稱，HTTP 請求可用名稱指定托盤
//   - Weight: 自我對弈發牌權重（必須 > 0）
//   - Pattern: 文字遮罩，例如 ["#.", "##"]
type PieceSetting struct {
	Name     string     `yaml:"name"    json:"name"`
	Weight   int        `yaml:"weight"  json:"weight"`
	Pattern  []string   `yaml:"shape"   json:"shape"`
	Shape    grid.Shape `yaml:"-"       json:"-"`
	initFlag bool
}

// Init 解析遮罩並檢查權重
func (ps *PieceSetting) Init() error {
	if ps.initFlag {
		return nil
	}
	ps.Name = strings.TrimSpace(ps.Name)
	if ps.Name == "" {
		return errs.NewFatal("piece name required")
	}
	if ps.Weight <= 0 {
		return errs.NewFatal(fmt.Sprintf("piece %q weight must > 0, got %d", ps.Name, ps.Weight))
	}
	s, err := grid.ParseShape(ps.Pattern)
	if err != nil {
		return errs.WrapWithExtra(err, "invalid piece shape", ps.Name)
	}
	ps.Shape = s
	ps.initFlag = true
	return nil
}
