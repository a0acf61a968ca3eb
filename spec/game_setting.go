package spec

import (
	"fmt"
	"time"

	"github.com/zintix-labs/blocklab/errs"
)

const (
	defaultMaxCaptureRetries = 500
	defaultRetryDelay        = 500 * time.Millisecond
	defaultMaxStale          = 100
)

// GameSetting 一款方塊遊戲的完整設定：盤面、托盤、方塊目錄與 driver 參數。
type GameSetting struct {
	GameName string         `yaml:"game_name"  json:"game_name"`
	Board    BoardSetting   `yaml:"board"      json:"board"`
	TraySize int            `yaml:"tray_size"  json:"tray_size"`
	MaxTray  int            `yaml:"max_tray"   json:"max_tray"`
	RNG      string         `yaml:"rng"        json:"rng"`
	Driver   DriverSetting  `yaml:"driver"     json:"driver"`
	Pieces   []PieceSetting `yaml:"pieces"     json:"pieces"`
	byName   map[string]int
}

// DriverSetting capture → decide → act 迴圈的限制
//
//   - MaxCaptureRetries: 擷取失敗時最多重試次數
//   - RetryDelayMs: 線性退避的基準延遲，第 n 次重試等待 RetryDelayMs*(n/5)
//   - MaxStale: 盤面未變化時第一輪照常重送，之後最多微調重送 MaxStale 輪，用盡後不再送出手勢
type DriverSetting struct {
	MaxCaptureRetries int `yaml:"max_capture_retries" json:"max_capture_retries"`
	RetryDelayMs      int `yaml:"retry_delay_ms"      json:"retry_delay_ms"`
	MaxStale          int `yaml:"max_stale"           json:"max_stale"`
}

// RetryDelay 轉成 time.Duration
func (ds DriverSetting) RetryDelay() time.Duration {
	return time.Duration(ds.RetryDelayMs) * time.Millisecond
}

func (gs *GameSetting) init() error {
	if err := gs.Board.Init(); err != nil {
		return errs.WrapWithExtra(err, "board setting", gs.GameName)
	}
	gs.byName = make(map[string]int, len(gs.Pieces))
	for i := range gs.Pieces {
		p := &gs.Pieces[i]
		if err := p.Init(); err != nil {
			return errs.WrapWithExtra(err, "piece setting", fmt.Sprintf("game=%s index=%d", gs.GameName, i))
		}
		if _, dup := gs.byName[p.Name]; dup {
			return errs.NewFatal(fmt.Sprintf("game_name: %s err:duplicate piece name %q", gs.GameName, p.Name))
		}
		gs.byName[p.Name] = i
	}
	gs.applyDefaults()
	return gs.valid()
}

func (gs *GameSetting) applyDefaults() {
	if gs.MaxTray == 0 {
		gs.MaxTray = gs.TraySize + 1
	}
	if gs.Driver.MaxCaptureRetries == 0 {
		gs.Driver.MaxCaptureRetries = defaultMaxCaptureRetries
	}
	if gs.Driver.RetryDelayMs == 0 {
		gs.Driver.RetryDelayMs = int(defaultRetryDelay / time.Millisecond)
	}
	if gs.Driver.MaxStale == 0 {
		gs.Driver.MaxStale = defaultMaxStale
	}
}

func (gs *GameSetting) valid() error {
	if gs.GameName == "" {
		return errs.NewFatal("empty game_name")
	}
	if gs.TraySize < 1 {
		return errs.NewFatal(fmt.Sprintf("game_name: %s err:tray_size must >= 1", gs.GameName))
	}
	if gs.MaxTray < gs.TraySize {
		return errs.NewFatal(fmt.Sprintf("game_name: %s err:max_tray %d < tray_size %d", gs.GameName, gs.MaxTray, gs.TraySize))
	}
	if gs.Driver.MaxCaptureRetries < 0 || gs.Driver.RetryDelayMs < 0 || gs.Driver.MaxStale < 0 {
		return errs.NewFatal(fmt.Sprintf("game_name: %s err:negative driver limits", gs.GameName))
	}
	if len(gs.Pieces) == 0 {
		return errs.NewFatal(fmt.Sprintf("game_name: %s err:empty pieces", gs.GameName))
	}
	for _, p := range gs.Pieces {
		if p.Shape.Rows > gs.Board.Rows || p.Shape.Cols > gs.Board.Cols {
			return errs.NewFatal(fmt.Sprintf("game_name: %s err:piece %q (%dx%d) larger than board %dx%d",
				gs.GameName, p.Name, p.Shape.Rows, p.Shape.Cols, gs.Board.Rows, gs.Board.Cols))
		}
	}
	return nil
}

// Piece 依名稱查找方塊設定
func (gs *GameSetting) Piece(name string) (*PieceSetting, bool) {
	i, ok := gs.byName[name]
	if !ok {
		return nil, false
	}
	return &gs.Pieces[i], true
}

// Weights 依設定順序回傳權重，供 sampler 建表
func (gs *GameSetting) Weights() []int {
	w := make([]int, len(gs.Pieces))
	for i, p := range gs.Pieces {
		w[i] = p.Weight
	}
	return w
}
