package preprocessing

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/exmax/pkg/errors"
)

// Summary はサンプル列の記述統計
type Summary struct {
	Count  int
	Min    float64
	Max    float64
	Mean   float64
	StdDev float64 // 不偏標準偏差。サンプルが一つの場合は 0
	Q1     float64
	Median float64
	Q3     float64
}

// Range は Max - Min を返す
func (s Summary) Range() float64 {
	return s.Max - s.Min
}

// Summarize はサンプル列の記述統計を計算する。入力は変更されない。
func Summarize(samples []float64) (Summary, error) {
	if len(samples) == 0 {
		return Summary{}, errors.NewModelError("Summarize", "empty data", errors.ErrEmptyData)
	}

	sorted := make([]float64, len(samples))
	copy(sorted, samples)
	sort.Float64s(sorted)

	s := Summary{
		Count:  len(sorted),
		Min:    floats.Min(sorted),
		Max:    floats.Max(sorted),
		Q1:     stat.Quantile(0.25, stat.Empirical, sorted, nil),
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
		Q3:     stat.Quantile(0.75, stat.Empirical, sorted, nil),
	}
	if len(sorted) == 1 {
		s.Mean = sorted[0]
		return s, nil
	}
	s.Mean, s.StdDev = stat.MeanStdDev(sorted, nil)
	return s, nil
}
