package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

var lang language.Tag = language.English

// 信賴區間
type CI struct {
	Lo float64 `json:"Lo"`
	Hi float64 `json:"Hi"`
}

// StatReport 自我對弈統計報告
//
// 紀錄過程只累積 int；Done() 一次性換算所有浮點統計量。
type StatReport struct {
	Summary  *SummaryReport  `json:"Summary"`
	Dist     *DistReport     `json:"Dist"`
	Quantile *QuantileReport `json:"Quantile,omitempty"`
	samples  []float64       // 每局放置的方塊數
	isDone   bool
}

type SummaryReport struct {
	GameName      string  `json:"GameName"`
	PRNG          string  `json:"PRNG,omitempty"`
	Seed          int64   `json:"Seed"`
	Games         int     `json:"Games"`
	Trays         int     `json:"Trays"`
	Pieces        int     `json:"Pieces"`
	LinesScored   int     `json:"LinesScored"`
	LinesCleared  int     `json:"LinesCleared"`
	GameOvers     int     `json:"GameOvers"`
	GameOverRate  float64 `json:"GameOverRate"`
	GameOverCI    CI      `json:"GameOverCI"`
	MeanPieces    float64 `json:"MeanPieces"`
	StdPieces     float64 `json:"StdPieces"`
	PiecesCI      CI      `json:"PiecesCI"`
	LinesPerPiece float64 `json:"LinesPerPiece"`
	LinesPerTray  float64 `json:"LinesPerTray"`
}

// DistReport 每局放置方塊數的分桶落點
type DistReport struct {
	Buckets       []string  `json:"Buckets"`
	PiecesCollect []int     `json:"PiecesCollect"`
	PiecesDist    []float64 `json:"PiecesDist"`
}

// NewStatReport 由累計值與每局樣本建立報告；samples 會被保留（不複製）
func NewStatReport(summary *SummaryReport, collect []int, samples []float64) *StatReport {
	return &StatReport{
		Summary: summary,
		Dist: &DistReport{
			Buckets:       Buckets.Labels(),
			PiecesCollect: collect,
		},
		samples: samples,
	}
}

// ============================================================
// ** 公開方法 **
// ============================================================

// Done 將累積計數轉換為最終統計結果並鎖定 isDone 標記
func (s *StatReport) Done() {
	if s.isDone {
		return
	}
	sm := s.Summary
	if sm.Games > 0 {
		sm.GameOverRate, sm.GameOverCI = proportionCICP(sm.GameOvers, sm.Games, 0.95)
	}
	sm.MeanPieces, sm.StdPieces, sm.PiecesCI = meanCI(s.samples, 0.95)
	if sm.Pieces > 0 {
		sm.LinesPerPiece = float64(sm.LinesScored) / float64(sm.Pieces)
	}
	if sm.Trays > 0 {
		sm.LinesPerTray = float64(sm.LinesScored) / float64(sm.Trays)
	}

	d := s.Dist
	d.PiecesDist = make([]float64, len(d.PiecesCollect))
	if sm.Games > 0 {
		for i, c := range d.PiecesCollect {
			d.PiecesDist[i] = float64(c) / float64(sm.Games)
		}
	}

	if len(s.samples) > 0 {
		s.Quantile = EstimateQuantiles(s.samples)
	}
	s.isDone = true
}

func (s *StatReport) WriteWith(w io.Writer, rep StatReportRender) error {
	s.Done()
	return rep.Write(w, s)
}

// StdOut 以表格輸出摘要與用時
func (s *StatReport) StdOut(w io.Writer, ut time.Duration) {
	s.Done()
	fmt.Fprint(w, formatDuration(ut, s.Summary.Games))
	keys, msg := s.fmtBasic()
	fmt.Fprintln(w, fmtTable(s.Summary.GameName, keys, msg))
}

// ============================================================
// ** 內部統計函數 **
// ============================================================

// meanCI 樣本平均、樣本標準差與 Student t 信賴區間
func meanCI(xs []float64, confidence float64) (mean float64, std float64, ci CI) {
	n := len(xs)
	switch n {
	case 0:
		return 0, 0, CI{}
	case 1:
		return xs[0], 0, CI{Lo: xs[0], Hi: xs[0]}
	}
	mean, std = stat.MeanStdDev(xs, nil)
	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 1)}
	half := t.Quantile(1-(1-confidence)/2) * std / math.Sqrt(float64(n))
	return mean, std, CI{Lo: math.Max(mean-half, 0), Hi: mean + half}
}

// Clopper–Pearson exact CI for binomial proportion (k successes out of n)
func proportionCICP(k int, n int, confidence float64) (pHat float64, ci CI) {
	if n == 0 {
		return 0, CI{0, 1}
	}
	alpha := 1 - confidence
	pHat = float64(k) / float64(n)
	if k == 0 {
		ci.Lo = 0
	} else {
		b := distuv.Beta{Alpha: float64(k), Beta: float64(n - k + 1)}
		ci.Lo = b.Quantile(alpha / 2)
	}
	if k == n {
		ci.Hi = 1
	} else {
		b := distuv.Beta{Alpha: float64(k + 1), Beta: float64(n - k)}
		ci.Hi = b.Quantile(1 - alpha/2)
	}
	return
}

func sortedCopy(xs []float64) []float64 {
	cp := make([]float64, len(xs))
	copy(cp, xs)
	sort.Float64s(cp)
	return cp
}

// ============================================================
// ** 輸出 **
// ============================================================

func formatDuration(d time.Duration, games int) string {
	p := message.NewPrinter(lang)
	if d < 0 {
		d = -d
	}
	sec := d.Seconds()
	if sec <= 0 {
		sec = 1e-9
	}
	gps := int(float64(games) / sec)
	if sec < 60.0 {
		return p.Sprintf("used: %.2f seconds\ngps : %d games/sec\n", sec, gps)
	}
	s := int(d.Seconds()) % 60
	m := int(d.Minutes()) % 60
	h := int(d.Hours())
	if h == 0 {
		return p.Sprintf("used: %dm %ds\ngps : %d games/sec\n", m, s, gps)
	}
	return p.Sprintf("used: %dh:%dm:%ds\ngps : %d games/sec\n", h, m, s, gps)
}

func (s *StatReport) fmtBasic() ([]string, map[string]string) {
	p := message.NewPrinter(lang)
	sm := s.Summary
	basic := map[string]string{
		"Game Name":        sm.GameName,
		"PRNG / Seed":      fmt.Sprintf("%s / %d", sm.PRNG, sm.Seed),
		"Games":            p.Sprintf("%d", sm.Games),
		"Trays":            p.Sprintf("%d", sm.Trays),
		"Pieces":           p.Sprintf("%d", sm.Pieces),
		"Lines Scored":     p.Sprintf("%d", sm.LinesScored),
		"Lines Cleared":    p.Sprintf("%d", sm.LinesCleared),
		"Pieces / Game":    p.Sprintf("%.2f ± %.2f", sm.MeanPieces, sm.StdPieces),
		"Pieces 95% CI":    p.Sprintf("[%.2f, %.2f]", sm.PiecesCI.Lo, sm.PiecesCI.Hi),
		"Lines / Piece":    p.Sprintf("%.4f", sm.LinesPerPiece),
		"Lines / Tray":     p.Sprintf("%.4f", sm.LinesPerTray),
		"Game Over":        p.Sprintf("%.2f %%", 100.0*sm.GameOverRate),
		"Game Over 95% CI": p.Sprintf("[%.2f%%, %.2f%%]", 100.0*sm.GameOverCI.Lo, 100.0*sm.GameOverCI.Hi),
	}
	keys := []string{"Game Name", "PRNG / Seed", "Games", "Trays", "Pieces", "Lines Scored", "Lines Cleared",
		"Pieces / Game", "Pieces 95% CI", "Lines / Piece", "Lines / Tray", "Game Over", "Game Over 95% CI"}
	if q := s.Quantile; q != nil {
		basic["Median Pieces"] = p.Sprintf("%.0f [%.0f, %.0f]", q.Median.Hat, q.Median.CI.Lo, q.Median.CI.Hi)
		basic["P10 / P90"] = p.Sprintf("%.0f / %.0f", q.P10.Hat, q.P90.Hat)
		keys = append(keys, "Median Pieces", "P10 / P90")
	}
	return keys, basic
}

func fmtTable(title string, keys []string, msg map[string]string) string {
	maxKeyLen := runewidth.StringWidth(title)
	maxValLen := 0
	for k, m := range msg {
		if w := runewidth.StringWidth(k); w > maxKeyLen {
			maxKeyLen = w
		}
		if w := runewidth.StringWidth(m); w > maxValLen {
			maxValLen = w
		}
	}
	maxKeyLen += 2
	maxValLen += 2

	divider := "+" + strings.Repeat("-", maxKeyLen) + "+" + strings.Repeat("-", maxValLen) + "+\n"
	top := "+" + strings.Repeat("-", maxKeyLen+1+maxValLen) + "+\n"

	totalInner := maxKeyLen + maxValLen + 1
	titleW := runewidth.StringWidth(title)
	left := (totalInner - titleW) / 2
	right := totalInner - titleW - left

	var sb strings.Builder
	sb.WriteString(top)
	sb.WriteString("|" + blank(left) + title + blank(right) + "|\n")
	sb.WriteString(divider)
	for _, k := range keys {
		v := msg[k]
		sb.WriteString("| " + k + blank(maxKeyLen-2-runewidth.StringWidth(k)) + " | " + v + blank(maxValLen-2-runewidth.StringWidth(v)) + " |\n")
	}
	sb.WriteString(divider)
	return sb.String()
}

func blank(w int) string {
	if w < 1 {
		return ""
	}
	return strings.Repeat(" ", w)
}
