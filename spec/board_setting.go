package spec

import (
	"github.com/zintix-labs/blocklab/errs"
	"github.com/zintix-labs/blocklab/sdk/grid"
)

// BoardSetting 盤面設定。
//
// Fields:
//   - Rows / Cols: 盤面尺寸
//   - Pattern: 選填的開局盤面，文字格式 (# 佔用 . 空)；留空代表全空
type BoardSetting struct {
	Rows     int      `yaml:"rows"  json:"rows"`
	Cols     int      `yaml:"cols"  json:"cols"`
	Pattern  []string `yaml:"init"  json:"init,omitempty"`
	start    grid.Board
	initFlag bool
}

// Init 檢查尺寸並建好開局盤面
func (bs *BoardSetting) Init() error {
	if bs.initFlag {
		return nil
	}
	if bs.Rows < 1 || bs.Cols < 1 {
		return errs.NewFatal("board rows and cols must be positive")
	}
	if len(bs.Pattern) == 0 {
		b, err := grid.NewBoard(bs.Rows, bs.Cols)
		if err != nil {
			return err
		}
		bs.start = b
	} else {
		b, err := grid.ParseBoard(joinLines(bs.Pattern))
		if err != nil {
			return errs.Wrap(err, "invalid board init pattern")
		}
		if b.Rows != bs.Rows || b.Cols != bs.Cols {
			return errs.NewFatal("board init pattern does not match rows/cols")
		}
		bs.start = b
	}
	bs.initFlag = true
	return nil
}

// Start 回傳開局盤面的副本
func (bs *BoardSetting) Start() grid.Board {
	return bs.start.Clone()
}

func joinLines(lines []string) string {
	n := 0
	for _, l := range lines {
		n += len(l) + 1
	}
	out := make([]byte, 0, n)
	for _, l := range lines {
		out = append(out, l...)
		out = append(out, '\n')
	}
	return string(out)
}
