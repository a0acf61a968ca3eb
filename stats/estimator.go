package stats

import (
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// PointStat 點估計與信賴區間
type PointStat struct {
	Hat float64 `json:"Hat"`
	CI  CI      `json:"CI"`
}

// QuantileReport 每局放置方塊數的分位數敘事：
// 最差 10% 的局撐多久、一般局撐多久、最好 10% 的局撐多久。
type QuantileReport struct {
	P10    PointStat `json:"P10"`
	Median PointStat `json:"Median"`
	P90    PointStat `json:"P90"`
}

// EstimateQuantiles 分位數點估計 (gonum Empirical) 加上 95% 分布無關 CI
func EstimateQuantiles(samples []float64) *QuantileReport {
	sorted := sortedCopy(samples)
	point := func(q float64) PointStat {
		lo, hi := quantileCI(sorted, q, 0.95)
		return PointStat{Hat: stat.Quantile(q, stat.Empirical, sorted, nil), CI: CI{Lo: lo, Hi: hi}}
	}
	return &QuantileReport{
		P10:    point(0.10),
		Median: point(0.50),
		P90:    point(0.90),
	}
}

// quantileCI 把 order statistic 的秩視為二項，以 Beta 反推 p 的範圍後再轉回樣本索引。
// sorted 必須已排序。
func quantileCI(sorted []float64, q, confidence float64) (float64, float64) {
	n := len(sorted)
	if n == 0 {
		return 0, 0
	}
	if n == 1 {
		return sorted[0], sorted[0]
	}
	alpha := 1 - confidence
	k := int(q * float64(n))
	k = min(max(k, 1), n-1)

	bLo := distuv.Beta{Alpha: float64(k), Beta: float64(n - k + 1)}
	bHi := distuv.Beta{Alpha: float64(k + 1), Beta: float64(n - k)}
	pLo := bLo.Quantile(alpha / 2)
	pHi := bHi.Quantile(1 - alpha/2)

	li := int(pLo * float64(n))
	ui := int(pHi * float64(n))
	if ui > 0 {
		ui--
	}
	li = min(max(li, 0), n-1)
	ui = min(max(ui, 0), n-1)
	return sorted[li], sorted[ui]
}
