package mixture

import (
	"math/rand/v2"

	"github.com/YuminosukeSato/exmax/pkg/log"
)

const (
	// DefaultDeltaRatio は初期対数尤度に対する収束閾値の比率です。
	DefaultDeltaRatio = 0.001

	// DefaultMaxIterations は一回の Maximize で採用される EM ステップ数の上限です。
	DefaultMaxIterations = 300
)

// Option はOptimizerの設定オプション
type Option func(*Optimizer)

// WithDeltaRatio は CreateMaximized* 系で使う delta ratio を設定
func WithDeltaRatio(ratio float64) Option {
	return func(o *Optimizer) {
		o.deltaRatio = ratio
	}
}

// WithMaxIterations は EM ステップ数の上限を設定。1 未満はデフォルト値になる
func WithMaxIterations(n int) Option {
	return func(o *Optimizer) {
		o.maxIterations = n
	}
}

// WithRandomState は初期配置の揺らぎに使う乱数シードを設定。負の値は時刻ベース
func WithRandomState(seed int64) Option {
	return func(o *Optimizer) {
		o.randomState = seed
	}
}

// WithRandSource は乱数源を直接注入する。WithRandomState より優先される
func WithRandSource(src rand.Source) Option {
	return func(o *Optimizer) {
		o.src = src
	}
}

// WithHistoryLimit は Trajectory に保持するモデル数の上限を設定。0 は無制限
func WithHistoryLimit(n int) Option {
	return func(o *Optimizer) {
		o.historyLimit = n
	}
}

// WithLogger はロガーを設定
func WithLogger(l log.Logger) Option {
	return func(o *Optimizer) {
		o.logger = l
	}
}
