// Package mixture は scikit-learn の GaussianMixture に倣った一次元混合ガウス推定器を提供します。
package mixture

import (
	"math"
	"math/rand/v2"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/exmax/core/model"
	em "github.com/YuminosukeSato/exmax/mixture"
	"github.com/YuminosukeSato/exmax/pkg/errors"
	"github.com/YuminosukeSato/exmax/pkg/log"
)

const modelName = "GaussianMixture"

// GaussianMixture は EM で学習する一次元混合ガウスモデル
// 入力 X は n_samples x 1 の行列
type GaussianMixture struct {
	state *model.StateManager

	// ハイパーパラメータ
	nComponents  int     // 成分数。0 の場合は BIC で自動選択
	deltaRatio   float64 // 収束判定の比率
	maxIter      int     // EM ステップ数の上限
	randomState  int64   // 乱数シード。負の値は時刻ベース
	historyLimit int     // Trajectory に保持するモデル数
	src          rand.Source
	logger       log.Logger

	// 学習パラメータ
	components_    []em.Component
	model_         *em.Model
	logLikelihood_ float64
	bic_           float64
	nIter_         int
	converged_     bool

	mu sync.RWMutex
}

// NewGaussianMixture は新しいGaussianMixtureを作成
func NewGaussianMixture(options ...Option) *GaussianMixture {
	gm := &GaussianMixture{
		state:       model.NewStateManager(),
		nComponents: 0,
		deltaRatio:  em.DefaultDeltaRatio,
		maxIter:     em.DefaultMaxIterations,
		randomState: -1,
	}

	for _, opt := range options {
		opt(gm)
	}

	if gm.logger == nil {
		gm.logger = log.GetLoggerWithName("sklearn.mixture")
	}
	gm.logger = gm.logger.With(log.ModelNameKey, modelName)

	return gm
}

// Option はGaussianMixtureの設定オプション
type Option func(*GaussianMixture)

// WithGMMNComponents は成分数を設定。0 は BIC による自動選択
func WithGMMNComponents(n int) Option {
	return func(gm *GaussianMixture) {
		gm.nComponents = n
	}
}

// WithGMMDeltaRatio は収束判定の比率を設定
func WithGMMDeltaRatio(ratio float64) Option {
	return func(gm *GaussianMixture) {
		gm.deltaRatio = ratio
	}
}

// WithGMMMaxIter は EM ステップ数の上限を設定
func WithGMMMaxIter(maxIter int) Option {
	return func(gm *GaussianMixture) {
		gm.maxIter = maxIter
	}
}

// WithGMMRandomState は乱数シードを設定
func WithGMMRandomState(seed int64) Option {
	return func(gm *GaussianMixture) {
		gm.randomState = seed
	}
}

// WithGMMRandSource は初期配置に使う乱数源を注入する
func WithGMMRandSource(src rand.Source) Option {
	return func(gm *GaussianMixture) {
		gm.src = src
	}
}

// WithGMMHistoryLimit は保持する反復履歴の上限を設定
func WithGMMHistoryLimit(n int) Option {
	return func(gm *GaussianMixture) {
		gm.historyLimit = n
	}
}

// WithGMMLogger はロガーを設定
func WithGMMLogger(l log.Logger) Option {
	return func(gm *GaussianMixture) {
		gm.logger = l
	}
}

// Fit は X の第 1 列を標本として混合モデルを学習する。y は無視される。
func (gm *GaussianMixture) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "GaussianMixture.Fit")

	samples, err := columnSamples("GaussianMixture.Fit", X)
	if err != nil {
		return err
	}

	gm.mu.Lock()
	defer gm.mu.Unlock()

	opt := em.NewOptimizer(
		em.WithDeltaRatio(gm.deltaRatio),
		em.WithMaxIterations(gm.maxIter),
		em.WithRandomState(gm.randomState),
		em.WithHistoryLimit(gm.historyLimit),
		em.WithRandSource(gm.src),
		em.WithLogger(gm.logger),
	)

	var fitted *em.Model
	if gm.nComponents <= 0 {
		fitted, err = opt.SelectModel(samples)
	} else {
		fitted, err = opt.CreateMaximizedModel(samples, gm.nComponents)
	}
	if err != nil {
		return errors.Wrap(err, "GaussianMixture.Fit")
	}

	gm.model_ = fitted
	gm.components_ = fitted.Components()
	gm.logLikelihood_ = fitted.LogLikelihood()
	gm.bic_ = fitted.BIC()
	gm.nIter_ = fitted.Iteration()
	gm.converged_ = fitted.Converged()
	gm.state.SetFitted(1, len(samples))

	gm.logger.Info("fit completed",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, len(samples),
		log.ComponentsKey, len(gm.components_),
		log.BICKey, gm.bic_,
	)
	return nil
}

// Predict は各サンプルの負担率が最大の成分番号を n_samples x 1 の行列で返す
func (gm *GaussianMixture) Predict(X mat.Matrix) (mat.Matrix, error) {
	m, err := gm.evaluate("Predict", X)
	if err != nil {
		return nil, err
	}
	labels := m.Labels()
	out := mat.NewDense(len(labels), 1, nil)
	for i, l := range labels {
		out.Set(i, 0, float64(l))
	}
	return out, nil
}

// PredictProba は各サンプルの成分ごとの負担率を n_samples x n_components の行列で返す
func (gm *GaussianMixture) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	m, err := gm.evaluate("PredictProba", X)
	if err != nil {
		return nil, err
	}
	return mat.DenseCopyOf(m.Responsibilities().T()), nil
}

// Score は学習済み成分のもとでの X の対数尤度を返す
func (gm *GaussianMixture) Score(X mat.Matrix) (float64, error) {
	m, err := gm.evaluate("Score", X)
	if err != nil {
		return 0, err
	}
	return m.LogLikelihood(), nil
}

// BIC は学習済み成分のもとでの X のベイズ情報量規準を返す。大きいほど良い
func (gm *GaussianMixture) BIC(X mat.Matrix) (float64, error) {
	m, err := gm.evaluate("BIC", X)
	if err != nil {
		return 0, err
	}
	return m.BIC(), nil
}

// evaluate は学習済み成分と X から評価用の Model を作る
func (gm *GaussianMixture) evaluate(method string, X mat.Matrix) (*em.Model, error) {
	if err := gm.state.RequireFitted(modelName, method); err != nil {
		return nil, err
	}
	samples, err := columnSamples("GaussianMixture."+method, X)
	if err != nil {
		return nil, err
	}

	gm.mu.RLock()
	defer gm.mu.RUnlock()
	return em.NewModel(gm.components_, samples)
}

func columnSamples(op string, X mat.Matrix) ([]float64, error) {
	if X == nil {
		return nil, errors.NewInvalidInputError(op, "X", "must not be nil", nil)
	}
	rows, cols := X.Dims()
	if rows == 0 {
		return nil, errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	if cols != 1 {
		return nil, errors.NewDimensionError(op, 1, cols, 1)
	}
	samples := mat.Col(nil, 0, X)
	for i, x := range samples {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, errors.NewInvalidInputError(op, "X", "must be finite", map[string]interface{}{"row": i, "value": x})
		}
	}
	return samples, nil
}

// IsFitted はモデルが学習済みかどうかを返す
func (gm *GaussianMixture) IsFitted() bool {
	return gm.state.IsFitted()
}

// Means は各成分の平均を返す
func (gm *GaussianMixture) Means() []float64 {
	return gm.componentValues(em.Component.Mu)
}

// Variances は各成分の分散項を返す
func (gm *GaussianMixture) Variances() []float64 {
	return gm.componentValues(em.Component.Sigma)
}

// Weights は各成分の混合比を返す
func (gm *GaussianMixture) Weights() []float64 {
	return gm.componentValues(em.Component.Tau)
}

func (gm *GaussianMixture) componentValues(f func(em.Component) float64) []float64 {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	out := make([]float64, len(gm.components_))
	for i, c := range gm.components_ {
		out[i] = f(c)
	}
	return out
}

// NComponents は学習済みの成分数を返す
func (gm *GaussianMixture) NComponents() int {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	return len(gm.components_)
}

// NIter は採用された EM ステップ数を返す
func (gm *GaussianMixture) NIter() int {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	return gm.nIter_
}

// Converged は反復上限に達する前に収束したかどうかを返す
func (gm *GaussianMixture) Converged() bool {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	return gm.converged_
}

// Model は学習で得られた Model を返す。ImportWeights で復元した場合は nil
func (gm *GaussianMixture) Model() *em.Model {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	return gm.model_
}

// GetParams はハイパーパラメータを返す
func (gm *GaussianMixture) GetParams() map[string]interface{} {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	return map[string]interface{}{
		"n_components":  gm.nComponents,
		"delta_ratio":   gm.deltaRatio,
		"max_iter":      gm.maxIter,
		"random_state":  gm.randomState,
		"history_limit": gm.historyLimit,
	}
}
