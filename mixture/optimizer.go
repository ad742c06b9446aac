package mixture

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/YuminosukeSato/exmax/pkg/errors"
	"github.com/YuminosukeSato/exmax/pkg/log"
)

// Optimizer は初期モデルの生成と EM による最大化を行います。
// 乱数源を内部に持つため、複数のゴルーチンから共有してはいけません。
type Optimizer struct {
	deltaRatio    float64
	maxIterations int
	randomState   int64
	historyLimit  int

	src    rand.Source
	rng    *rand.Rand
	logger log.Logger
}

// NewOptimizer は新しいOptimizerを作成
func NewOptimizer(options ...Option) *Optimizer {
	o := &Optimizer{
		deltaRatio:    DefaultDeltaRatio,
		maxIterations: DefaultMaxIterations,
		randomState:   -1,
	}

	for _, opt := range options {
		opt(o)
	}

	if o.maxIterations < 1 {
		o.maxIterations = DefaultMaxIterations
	}
	if o.historyLimit < 0 {
		o.historyLimit = 0
	}
	if o.src == nil {
		var seed uint64
		if o.randomState >= 0 {
			seed = uint64(o.randomState)
		} else {
			seed = uint64(time.Now().UnixNano())
		}
		o.src = rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
	}
	o.rng = rand.New(o.src)
	if o.logger == nil {
		o.logger = log.GetLoggerWithName("mixture.optimizer")
	}

	return o
}

// DeltaRatio returns the ratio used by the CreateMaximized* entry points.
func (o *Optimizer) DeltaRatio() float64 { return o.deltaRatio }

// MaxIterations returns the EM step cap.
func (o *Optimizer) MaxIterations() int { return o.maxIterations }

// HistoryLimit returns the trajectory retention limit; 0 means unbounded.
func (o *Optimizer) HistoryLimit() int { return o.historyLimit }

// CreateModel は samples の範囲に componentCount 個の成分を等間隔に配置した初期モデルを作成する。
// 各成分の平均には [0,1) の揺らぎが加わる。分散は範囲を覆う幅 (下限 1)、混合比は均等。
// 返されるモデルは新しい Trajectory のイテレーション 0 になる。
func (o *Optimizer) CreateModel(samples []float64, componentCount int) (*Model, error) {
	if err := validateSamples("CreateModel", samples); err != nil {
		return nil, err
	}
	if componentCount < 1 {
		return nil, errors.NewInvalidInputError("CreateModel", "componentCount", "must be at least 1", componentCount)
	}

	xs := make([]float64, len(samples))
	copy(xs, samples)
	lo, hi := floats.Min(xs), floats.Max(xs)
	k := float64(componentCount)

	components := make([]Component, componentCount)
	for i := range components {
		jitter := o.rng.Float64()
		mu := jitter + lo + float64(i+1)*(hi-lo)/(k+1)
		sigma := math.Max((hi-lo)/(2*(k+1)), 1.0)
		components[i] = NewComponent(mu, sigma, 1/k)
	}

	m := newModel(components, xs)
	newTrajectory(o.historyLimit).start(m)
	return m, nil
}

func validateSamples(op string, samples []float64) error {
	if len(samples) == 0 {
		return errors.NewInvalidInputError(op, "samples", "must contain at least one sample", 0)
	}
	for i, x := range samples {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return errors.NewInvalidInputError(op, "samples", "must be finite", map[string]interface{}{"index": i, "value": x})
		}
	}
	return nil
}

// Maximize は model から EM を繰り返し、改善量が delta = -LL(model)*deltaRatio 以下になった
// 時点のモデルを返す。採用された各モデルは model の Trajectory に追加される。
// 反復上限に達した場合は ConvergenceWarning を発行し、その時点のモデルを返す。
func (o *Optimizer) Maximize(model *Model, deltaRatio float64) (*Model, error) {
	if model == nil {
		return nil, errors.NewInvalidInputError("Maximize", "model", "must not be nil", nil)
	}
	if deltaRatio < 0 || math.IsNaN(deltaRatio) || math.IsInf(deltaRatio, 0) {
		return nil, errors.NewInvalidInputError("Maximize", "deltaRatio", "must be finite and non-negative", deltaRatio)
	}

	traj := o.trajectoryFor(model)
	logger := o.logger.With(log.OperationKey, log.OperationMaximize, log.ComponentsKey, model.ComponentCount())

	delta := -model.LogLikelihood() * deltaRatio
	if err := errors.CheckScalar("log_likelihood", model.LogLikelihood(), model.Iteration()); err != nil {
		logger.Warn("initial log likelihood is not finite", log.ErrorCodeKey, log.ErrorNumerical)
		errors.Warn(err)
	}

	debug := logger.Enabled(context.Background(), log.LevelDebug)
	warned := false
	current := model
	for step := 0; step < o.maxIterations; step++ {
		components, err := o.mStep(current)
		if err != nil && !warned {
			warned = true
			logger.Warn("degenerate component", log.IterationKey, current.Iteration()+1, log.ErrorCodeKey, log.ErrorNumerical)
			errors.Warn(err)
		}
		next := newModel(components, current.samples)

		improvement := next.LogLikelihood() - current.LogLikelihood()
		if debug {
			logger.Debug("EM step",
				log.IterationKey, current.Iteration()+1,
				log.LogLikelihoodKey, next.LogLikelihood(),
				log.ImprovementKey, improvement,
				log.DeltaKey, delta,
			)
		}
		if improvement <= delta {
			traj.converged = true
			current.outcome = OutcomeConverged
			logger.Info("EM converged",
				log.IterationKey, current.Iteration(),
				log.LogLikelihoodKey, current.LogLikelihood(),
				log.BICKey, current.BIC(),
			)
			return current, nil
		}

		traj.append(next)
		current = next
	}

	traj.converged = false
	current.outcome = OutcomeIterationCap
	logger.Warn("EM reached the iteration cap",
		log.MaxIterationsKey, o.maxIterations,
		log.LogLikelihoodKey, current.LogLikelihood(),
		log.ErrorCodeKey, log.ErrorConvergence,
	)
	errors.Warn(errors.NewConvergenceWarning("EM", o.maxIterations, ""))
	return current, nil
}

// trajectoryFor は model を最新とする Trajectory を返す。
// model が既存の Trajectory の途中にある場合はそこから分岐する。
func (o *Optimizer) trajectoryFor(model *Model) *Trajectory {
	if t := model.trajectory; t != nil {
		if t.Latest() == model {
			return t
		}
		return t.fork(model)
	}
	t := newTrajectory(o.historyLimit)
	t.offset = model.iteration
	t.base = model.iteration
	t.models = []*Model{model}
	return t
}

// Step は収束判定なしで EM を一回だけ適用したモデルを返す。
// 結果はどの Trajectory にも追加されない。
func (o *Optimizer) Step(model *Model) (*Model, error) {
	if model == nil {
		return nil, errors.NewInvalidInputError("Step", "model", "must not be nil", nil)
	}
	components, err := o.mStep(model)
	if err != nil {
		errors.Warn(err)
	}
	next := newModel(components, model.samples)
	next.iteration = model.iteration + 1
	return next, nil
}

// mStep は各成分の平均と分散を負担率で重み付けして再推定する。混合比は更新しない。
// 再推定値が有限でない成分 (負担率の合計が 0 など) は前回の mu と sigma を引き継ぎ、
// NumericalInstabilityError を返す。
func (o *Optimizer) mStep(model *Model) ([]Component, error) {
	n := len(model.samples)
	components := make([]Component, len(model.components))
	var unstable error

	for i, c := range model.components {
		r := model.resp[i*n : (i+1)*n]

		var total float64
		for j := range model.samples {
			total += r[j]
		}

		var mu float64
		for j, x := range model.samples {
			mu += x * r[j] / total
		}

		var sigma float64
		for j, x := range model.samples {
			d := x - mu
			sigma += d * d * r[j]
		}
		sigma = math.Max(math.Sqrt(sigma/total), 1.0)

		if err := errors.CheckNumericalStability("m_step", []float64{mu, sigma}, model.iteration+1); err != nil {
			if unstable == nil {
				unstable = err
			}
			// 負担率の合計が 0 の成分は前回の値を保つ
			mu, sigma = c.mu, c.sigma
		}
		components[i] = NewComponent(mu, sigma, c.tau)
	}

	return components, unstable
}

// CreateMaximizedModel は CreateModel と Maximize を Optimizer の delta ratio で続けて実行する。
func (o *Optimizer) CreateMaximizedModel(samples []float64, componentCount int) (*Model, error) {
	model, err := o.CreateModel(samples, componentCount)
	if err != nil {
		return nil, err
	}
	return o.Maximize(model, o.deltaRatio)
}
