package configs

import (
	"embed"
)

// FS 內建的遊戲設定 (YAML)，供 CLI 與 server 預設載入。
//
//go:embed *.yaml
var FS embed.FS

// DefaultGame 預設遊戲名稱
const DefaultGame = "block1010"
