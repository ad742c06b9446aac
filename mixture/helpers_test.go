package mixture

import (
	"testing"

	"github.com/YuminosukeSato/exmax/pkg/errors"
	"github.com/YuminosukeSato/exmax/pkg/log"
)

// constSource は常に同じ値を返す rand.Source。
// rand.Rand.Float64 は上位 53 ビットを使うので 0 は揺らぎ 0、1<<52 は揺らぎ 0.5 になる。
type constSource uint64

func (s constSource) Uint64() uint64 { return uint64(s) }

const halfJitter = constSource(1 << 52)

var (
	twoClusters = []float64{1, 1, 1, 9, 9, 9}

	clusterShape = []float64{-1.5, -1.1, -0.8, -0.6, -0.3, -0.1, 0.0, 0.2, 0.4, 0.7, 0.9, 1.2, 1.6}
)

// shifted は clusterShape を offsets の各値だけずらして連結する。
func shifted(offsets ...float64) []float64 {
	var out []float64
	for _, off := range offsets {
		for _, v := range clusterShape {
			out = append(out, v+off)
		}
	}
	return out
}

// newTestOptimizer は揺らぎ 0 で結果が決定的になる Optimizer を返す。
func newTestOptimizer(t *testing.T, opts ...Option) (*Optimizer, *log.TestLogger) {
	t.Helper()
	logger, _ := log.NewTestLogger(log.LevelDebug)
	base := []Option{WithRandSource(constSource(0)), WithLogger(logger)}
	return NewOptimizer(append(base, opts...)...), logger
}

// captureWarnings は t の終了まで pkg/errors の警告を収集する。
func captureWarnings(t *testing.T) *[]error {
	t.Helper()
	var warnings []error
	errors.SetWarningHandler(func(w error) { warnings = append(warnings, w) })
	t.Cleanup(func() { errors.SetWarningHandler(func(w error) {}) })
	return &warnings
}
