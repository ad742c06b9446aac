package mixture

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/exmax/metrics"
	"github.com/YuminosukeSato/exmax/pkg/errors"
)

// Model は成分の集合とサンプル列の組です。
// 負担率と対数尤度は生成時に一度だけ計算され、以後変化しません。
type Model struct {
	components []Component
	samples    []float64

	// resp は components x samples の行優先行列
	resp          []float64
	logLikelihood float64

	trajectory *Trajectory
	iteration  int
	outcome    Outcome
}

// Outcome は Maximize がモデルを返した理由を表す。
type Outcome int

const (
	// OutcomeNone は Maximize の戻り値になっていないモデル。
	OutcomeNone Outcome = iota
	// OutcomeConverged は改善量が閾値以下になって停止したモデル。
	OutcomeConverged
	// OutcomeIterationCap は反復上限で打ち切られたモデル。
	OutcomeIterationCap
)

func (o Outcome) String() string {
	switch o {
	case OutcomeConverged:
		return "converged"
	case OutcomeIterationCap:
		return "iteration_cap"
	default:
		return "none"
	}
}

// NewModel returns a detached model over copies of components and samples.
// Both slices must be non-empty.
func NewModel(components []Component, samples []float64) (*Model, error) {
	if len(components) == 0 {
		return nil, errors.NewInvalidInputError("NewModel", "components", "must contain at least one component", 0)
	}
	if len(samples) == 0 {
		return nil, errors.NewInvalidInputError("NewModel", "samples", "must contain at least one sample", 0)
	}
	comps := make([]Component, len(components))
	copy(comps, components)
	xs := make([]float64, len(samples))
	copy(xs, samples)
	return newModel(comps, xs), nil
}

// newModel は引数をコピーせずに保持する。呼び出し側は以後スライスを変更しないこと。
func newModel(components []Component, samples []float64) *Model {
	m := &Model{components: components, samples: samples}
	m.expect()
	return m
}

// expect は E ステップ: 全 (成分, サンプル) の負担率と対数尤度を計算する。
func (m *Model) expect() {
	k, n := len(m.components), len(m.samples)
	m.resp = make([]float64, k*n)
	dens := make([]float64, k)

	var ll float64
	for j, x := range m.samples {
		var total float64
		for i, c := range m.components {
			dens[i] = c.Density(x)
			total += dens[i] * c.tau
		}

		prod := 1.0
		for i, c := range m.components {
			r := ratio(dens[i]*c.tau, total)
			m.resp[i*n+j] = r
			prod *= math.Pow(c.tau*dens[i], r)
		}
		ll += math.Log(prod)
	}
	m.logLikelihood = ll
}

func ratio(weighted, total float64) float64 {
	if total == 0 {
		return 0
	}
	r := weighted / total
	if math.IsNaN(r) {
		return 0
	}
	return r
}

// Responsibility returns the share of the weighted density at sample that
// belongs to c: density(sample, c)*tau(c) / Σ_k density(sample, k)*tau(k).
// It returns 0 when the denominator is 0 or the ratio is NaN. c need not be
// one of the model's components.
func (m *Model) Responsibility(sample float64, c Component) float64 {
	var total float64
	for _, k := range m.components {
		total += k.Density(sample) * k.tau
	}
	return ratio(c.Density(sample)*c.tau, total)
}

// ResponsibilityAt returns the cached responsibility of component i for sample j.
func (m *Model) ResponsibilityAt(i, j int) float64 {
	return m.resp[i*len(m.samples)+j]
}

// Responsibilities returns the components x samples responsibility matrix.
func (m *Model) Responsibilities() *mat.Dense {
	data := make([]float64, len(m.resp))
	copy(data, m.resp)
	return mat.NewDense(len(m.components), len(m.samples), data)
}

// Labels returns, for each sample, the index of the component with the
// largest responsibility. Ties go to the lower index.
func (m *Model) Labels() []int {
	k, n := len(m.components), len(m.samples)
	labels := make([]int, n)
	col := make([]float64, k)
	for j := 0; j < n; j++ {
		for i := 0; i < k; i++ {
			col[i] = m.resp[i*n+j]
		}
		labels[j] = floats.MaxIdx(col)
	}
	return labels
}

// LogLikelihood は Σ_x ln(Π_c (tau_c * density_c(x))^r_c(x)) を返す。
// 負担率で重み付けした冪の積であり、標準的な混合尤度 Σ_x ln Σ_c tau_c*density_c(x) とは異なる。
func (m *Model) LogLikelihood() float64 {
	return m.logLikelihood
}

// BIC returns 2*LogLikelihood - ComponentCount*ln(SampleCount). Larger is better.
func (m *Model) BIC() float64 {
	return metrics.BIC(m.logLikelihood, len(m.components), len(m.samples))
}

// AIC returns 2*LogLikelihood - 2*ComponentCount. Larger is better.
func (m *Model) AIC() float64 {
	return metrics.AIC(m.logLikelihood, len(m.components))
}

// Components returns a copy of the components.
func (m *Model) Components() []Component {
	out := make([]Component, len(m.components))
	copy(out, m.components)
	return out
}

// Samples returns a copy of the samples.
func (m *Model) Samples() []float64 {
	out := make([]float64, len(m.samples))
	copy(out, m.samples)
	return out
}

func (m *Model) ComponentCount() int { return len(m.components) }

func (m *Model) SampleCount() int { return len(m.samples) }

// Iteration returns the EM iteration that produced the model; 0 for an initial model.
func (m *Model) Iteration() int { return m.iteration }

// Trajectory returns the optimisation run the model belongs to, or nil for a
// detached model.
func (m *Model) Trajectory() *Trajectory { return m.trajectory }

// Outcome returns why Maximize last returned m. A model that was continued by a
// later Maximize keeps the outcome it was returned with.
func (m *Model) Outcome() Outcome { return m.outcome }

// Converged reports whether Maximize returned m because the improvement fell to
// or below the threshold.
func (m *Model) Converged() bool { return m.outcome == OutcomeConverged }

// PriorModel returns the model of the previous iteration, or nil if m is an
// initial model, detached, or its predecessor was dropped by the history limit.
func (m *Model) PriorModel() *Model {
	if m.trajectory == nil {
		return nil
	}
	return m.trajectory.At(m.iteration - 1)
}

// History returns the retained chain of models ending with m, oldest first.
func (m *Model) History() []*Model {
	if m.trajectory == nil {
		return []*Model{m}
	}
	return m.trajectory.through(m)
}
