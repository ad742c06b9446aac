package mixture

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/exmax/pkg/errors"
	"github.com/YuminosukeSato/exmax/pkg/log"
)

func TestNewOptimizerDefaults(t *testing.T) {
	o := NewOptimizer()
	assert.Equal(t, DefaultDeltaRatio, o.DeltaRatio())
	assert.Equal(t, DefaultMaxIterations, o.MaxIterations())
	assert.Equal(t, 0, o.HistoryLimit())

	o = NewOptimizer(WithMaxIterations(0), WithHistoryLimit(-3), WithDeltaRatio(0.01))
	assert.Equal(t, DefaultMaxIterations, o.MaxIterations())
	assert.Equal(t, 0, o.HistoryLimit())
	assert.Equal(t, 0.01, o.DeltaRatio())
}

func TestCreateModel(t *testing.T) {
	tests := []struct {
		name      string
		src       constSource
		samples   []float64
		k         int
		wantMu    []float64
		wantSigma float64
	}{
		{
			name:      "no jitter",
			src:       0,
			samples:   twoClusters,
			k:         2,
			wantMu:    []float64{1 + 8.0/3, 1 + 16.0/3},
			wantSigma: 8.0 / 6,
		},
		{
			name:      "half jitter",
			src:       halfJitter,
			samples:   twoClusters,
			k:         2,
			wantMu:    []float64{1.5 + 8.0/3, 1.5 + 16.0/3},
			wantSigma: 8.0 / 6,
		},
		{
			name:      "narrow range floors sigma",
			src:       0,
			samples:   []float64{0, 1, 2},
			k:         3,
			wantMu:    []float64{0.5, 1, 1.5},
			wantSigma: 1,
		},
		{
			name:      "single sample",
			src:       0,
			samples:   []float64{5.0},
			k:         2,
			wantMu:    []float64{5, 5},
			wantSigma: 1,
		},
		{
			name:      "single component",
			src:       0,
			samples:   []float64{-4, 4},
			k:         1,
			wantMu:    []float64{0},
			wantSigma: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := NewOptimizer(WithRandSource(tt.src))
			m, err := o.CreateModel(tt.samples, tt.k)
			require.NoError(t, err)

			comps := m.Components()
			require.Len(t, comps, tt.k)
			for i, c := range comps {
				assert.InDelta(t, tt.wantMu[i], c.Mu(), 1e-12, "mu[%d]", i)
				assert.InDelta(t, tt.wantSigma, c.Sigma(), 1e-12, "sigma[%d]", i)
				assert.InDelta(t, 1/float64(tt.k), c.Tau(), 1e-15, "tau[%d]", i)
			}

			assert.Equal(t, 0, m.Iteration())
			require.NotNil(t, m.Trajectory())
			assert.Same(t, m, m.Trajectory().Latest())
			assert.Nil(t, m.PriorModel())
		})
	}
}

func TestCreateModelJitterRange(t *testing.T) {
	o := NewOptimizer(WithRandomState(7))
	for i := 0; i < 50; i++ {
		m, err := o.CreateModel(twoClusters, 2)
		require.NoError(t, err)
		comps := m.Components()
		assert.GreaterOrEqual(t, comps[0].Mu(), 1+8.0/3-1e-12)
		assert.Less(t, comps[0].Mu(), 2+8.0/3)
	}
}

func TestCreateModelSeedIsReproducible(t *testing.T) {
	a, err := NewOptimizer(WithRandomState(42)).CreateModel(twoClusters, 3)
	require.NoError(t, err)
	b, err := NewOptimizer(WithRandomState(42)).CreateModel(twoClusters, 3)
	require.NoError(t, err)
	assert.Equal(t, a.Components(), b.Components())
}

func TestCreateModelInvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		samples []float64
		k       int
		param   string
	}{
		{"empty samples", nil, 2, "samples"},
		{"zero components", twoClusters, 0, "componentCount"},
		{"negative components", twoClusters, -1, "componentCount"},
		{"nan sample", []float64{1, math.NaN()}, 2, "samples"},
		{"inf sample", []float64{math.Inf(-1), 1}, 2, "samples"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, _ := newTestOptimizer(t)
			m, err := o.CreateModel(tt.samples, tt.k)
			assert.Nil(t, m)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrInvalidInput))

			var inputErr *errors.InvalidInputError
			require.True(t, errors.As(err, &inputErr))
			assert.Equal(t, "CreateModel", inputErr.Op)
			assert.Equal(t, tt.param, inputErr.ParamName)
		})
	}
}

func TestMaximizeTwoClusters(t *testing.T) {
	o, logger := newTestOptimizer(t)
	initial, err := o.CreateModel(twoClusters, 2)
	require.NoError(t, err)

	m, err := o.Maximize(initial, DefaultDeltaRatio)
	require.NoError(t, err)

	comps := m.Components()
	assert.InDelta(t, 1.0026828010437314, comps[0].Mu(), 1e-9)
	assert.InDelta(t, 8.997317198956269, comps[1].Mu(), 1e-9)
	for _, c := range comps {
		assert.Equal(t, 1.0, c.Sigma())
		assert.Equal(t, 0.5, c.Tau())
	}
	assert.InDelta(t, -9.67253587485451, m.LogLikelihood(), 1e-9)
	assert.InDelta(t, -22.92859068816513, m.BIC(), 1e-9)

	assert.Equal(t, 1, m.Iteration())
	assert.Same(t, initial, m.PriorModel())
	assert.Equal(t, []*Model{initial, m}, m.History())
	assert.True(t, m.Trajectory().Converged())

	assert.True(t, logger.ContainsMessage("EM converged"))
	assert.True(t, logger.ContainsMessage("EM step"))
	assert.True(t, logger.ContainsField(log.OperationKey, log.OperationMaximize))
}

func TestMaximizeWithJitterStaysNearClusters(t *testing.T) {
	for _, src := range []constSource{0, halfJitter, constSource(math.MaxUint64)} {
		o := NewOptimizer(WithRandSource(src))
		m, err := o.CreateMaximizedModel(twoClusters, 2)
		require.NoError(t, err)

		comps := m.Components()
		assert.InDelta(t, 1.0, comps[0].Mu(), 0.5)
		assert.InDelta(t, 9.0, comps[1].Mu(), 0.5)
		for _, c := range comps {
			assert.InDelta(t, 0.5, c.Tau(), 1e-12)
			assert.GreaterOrEqual(t, c.Sigma(), 1.0)
		}
	}
}

func TestMaximizeMonotoneWithinDelta(t *testing.T) {
	samples := shifted(0, 20)
	for k := 2; k <= 4; k++ {
		o, _ := newTestOptimizer(t)
		initial, err := o.CreateModel(samples, k)
		require.NoError(t, err)
		delta := math.Abs(-initial.LogLikelihood() * DefaultDeltaRatio)

		m, err := o.Maximize(initial, DefaultDeltaRatio)
		require.NoError(t, err)

		history := m.History()
		require.NotEmpty(t, history)
		assert.Same(t, initial, history[0])
		for i := 1; i < len(history); i++ {
			assert.GreaterOrEqual(t, history[i].LogLikelihood(), history[i-1].LogLikelihood()-delta, "k=%d step=%d", k, i)
			assert.Equal(t, i, history[i].Iteration())
		}
	}
}

func TestMaximizeExtraStepIsBelowDelta(t *testing.T) {
	o, _ := newTestOptimizer(t)
	initial, err := o.CreateModel(twoClusters, 2)
	require.NoError(t, err)
	delta := -initial.LogLikelihood() * DefaultDeltaRatio

	m, err := o.Maximize(initial, DefaultDeltaRatio)
	require.NoError(t, err)

	next, err := o.Step(m)
	require.NoError(t, err)
	assert.LessOrEqual(t, next.LogLikelihood()-m.LogLikelihood(), delta)

	for i, c := range next.Components() {
		prev := m.Components()[i]
		assert.Less(t, math.Abs(c.Mu()-prev.Mu()), delta)
		assert.Less(t, math.Abs(c.Sigma()-prev.Sigma()), delta)
	}
	assert.InDelta(t, 1.0, next.Components()[0].Mu(), 1e-9)
	assert.InDelta(t, 9.0, next.Components()[1].Mu(), 1e-9)
}

func TestMaximizeSingleSample(t *testing.T) {
	o, _ := newTestOptimizer(t)
	initial, err := o.CreateModel([]float64{5.0}, 2)
	require.NoError(t, err)
	assert.InDelta(t, -1.612085713764618, initial.LogLikelihood(), 1e-9)

	m, err := o.Maximize(initial, DefaultDeltaRatio)
	require.NoError(t, err)
	assert.Same(t, initial, m)
	assert.True(t, m.Trajectory().Converged())
}

func TestMaximizeZeroDeltaRatio(t *testing.T) {
	o, _ := newTestOptimizer(t)
	m, err := o.CreateModel(twoClusters, 2)
	require.NoError(t, err)

	m, err = o.Maximize(m, 0)
	require.NoError(t, err)
	assert.True(t, m.Trajectory().Converged())
	assert.InDelta(t, 1.0, m.Components()[0].Mu(), 1e-9)
	assert.InDelta(t, 9.0, m.Components()[1].Mu(), 1e-9)
}

func TestMaximizeInvalidInput(t *testing.T) {
	o, _ := newTestOptimizer(t)
	m, err := o.CreateModel(twoClusters, 2)
	require.NoError(t, err)

	tests := []struct {
		name  string
		model *Model
		ratio float64
	}{
		{"nil model", nil, DefaultDeltaRatio},
		{"negative ratio", m, -0.1},
		{"nan ratio", m, math.NaN()},
		{"inf ratio", m, math.Inf(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := o.Maximize(tt.model, tt.ratio)
			assert.Nil(t, got)
			assert.True(t, errors.Is(err, errors.ErrInvalidInput))
		})
	}
}

func TestMaximizeIterationCap(t *testing.T) {
	warnings := captureWarnings(t)
	o, logger := newTestOptimizer(t, WithMaxIterations(1))

	initial, err := o.CreateModel(shifted(0, 20), 2)
	require.NoError(t, err)
	m, err := o.Maximize(initial, DefaultDeltaRatio)
	require.NoError(t, err)

	assert.Equal(t, 1, m.Iteration())
	assert.Len(t, m.History(), 2)
	assert.False(t, m.Trajectory().Converged())
	assert.True(t, logger.ContainsMessage("EM reached the iteration cap"))

	require.Len(t, *warnings, 1)
	var cw *errors.ConvergenceWarning
	require.True(t, errors.As((*warnings)[0], &cw))
	assert.Equal(t, 1, cw.Iterations)
}

func TestMaximizeHistoryLimit(t *testing.T) {
	o, _ := newTestOptimizer(t, WithHistoryLimit(1))
	initial, err := o.CreateModel(twoClusters, 2)
	require.NoError(t, err)

	m, err := o.Maximize(initial, 0)
	require.NoError(t, err)

	traj := m.Trajectory()
	assert.Equal(t, 1, traj.Len())
	assert.Equal(t, m.Iteration(), traj.Dropped())
	assert.Nil(t, m.PriorModel())
	assert.Equal(t, []*Model{m}, m.History())
	assert.Nil(t, traj.At(0))
	assert.Same(t, m, traj.At(m.Iteration()))
}

func TestMaximizeTwiceFromSameStart(t *testing.T) {
	o, _ := newTestOptimizer(t)
	initial, err := o.CreateModel(twoClusters, 2)
	require.NoError(t, err)

	first, err := o.Maximize(initial, DefaultDeltaRatio)
	require.NoError(t, err)
	second, err := o.Maximize(initial, DefaultDeltaRatio)
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.NotSame(t, first.Trajectory(), second.Trajectory())
	assert.Same(t, initial, second.PriorModel())
	assert.Equal(t, first.Components(), second.Components())

	// 元の履歴は変わらない
	assert.Equal(t, []*Model{initial, first}, first.History())
}

func TestMaximizeContinuesExistingRun(t *testing.T) {
	o, _ := newTestOptimizer(t, WithMaxIterations(1))
	initial, err := o.CreateModel(shifted(0, 20, 40), 3)
	require.NoError(t, err)

	captureWarnings(t)
	partial, err := o.Maximize(initial, DefaultDeltaRatio)
	require.NoError(t, err)
	resumed, err := o.Maximize(partial, DefaultDeltaRatio)
	require.NoError(t, err)

	assert.Same(t, partial.Trajectory(), resumed.Trajectory())
	history := resumed.History()
	assert.Same(t, initial, history[0])
	assert.Same(t, partial, history[1])
}

func TestStep(t *testing.T) {
	o, _ := newTestOptimizer(t)
	initial, err := o.CreateModel(twoClusters, 2)
	require.NoError(t, err)

	next, err := o.Step(initial)
	require.NoError(t, err)

	assert.Nil(t, next.Trajectory())
	assert.Equal(t, 1, next.Iteration())
	assert.Nil(t, next.PriorModel())
	assert.Equal(t, 1, initial.Trajectory().Len())
	assert.InDelta(t, 1.0026828010437314, next.Components()[0].Mu(), 1e-9)

	_, err = o.Step(nil)
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
}

func TestStepDegenerateComponentWarns(t *testing.T) {
	warnings := captureWarnings(t)
	o, _ := newTestOptimizer(t)

	m, err := NewModel([]Component{NewComponent(0, 1.5, 0)}, []float64{1, 2})
	require.NoError(t, err)

	next, err := o.Step(m)
	require.NoError(t, err)
	// 負担率の合計が 0 の成分は前回の値のまま
	assert.Equal(t, NewComponent(0, 1.5, 0), next.Components()[0])

	require.Len(t, *warnings, 1)
	var numErr *errors.NumericalInstabilityError
	assert.True(t, errors.As((*warnings)[0], &numErr))
}

func TestMaximizeKeepsDegenerateComponentFinite(t *testing.T) {
	warnings := captureWarnings(t)
	o, _ := newTestOptimizer(t)

	m, err := NewModel([]Component{
		NewComponent(2, 4, 1),
		NewComponent(50, 2, 0),
	}, twoClusters)
	require.NoError(t, err)

	got, err := o.Maximize(m, DefaultDeltaRatio)
	require.NoError(t, err)

	for _, c := range got.Components() {
		assert.False(t, math.IsNaN(c.Mu()) || math.IsInf(c.Mu(), 0))
		assert.False(t, math.IsNaN(c.Sigma()) || math.IsInf(c.Sigma(), 0))
	}
	assert.Equal(t, NewComponent(50, 2, 0), got.Components()[1])
	assert.False(t, math.IsNaN(got.LogLikelihood()))
	assert.True(t, got.Converged())

	// 警告は Maximize 一回につき一度だけ
	var numErrs int
	for _, w := range *warnings {
		var numErr *errors.NumericalInstabilityError
		if errors.As(w, &numErr) {
			numErrs++
		}
	}
	assert.Equal(t, 1, numErrs)
}

func TestMaximizeOutcomeIsPerModel(t *testing.T) {
	captureWarnings(t)
	capped, _ := newTestOptimizer(t, WithMaxIterations(1))
	initial, err := capped.CreateModel(twoClusters, 2)
	require.NoError(t, err)

	partial, err := capped.Maximize(initial, DefaultDeltaRatio)
	require.NoError(t, err)
	assert.Equal(t, OutcomeNone, initial.Outcome())
	assert.Equal(t, OutcomeIterationCap, partial.Outcome())
	assert.False(t, partial.Converged())

	full, _ := newTestOptimizer(t)
	resumed, err := full.Maximize(partial, 0)
	require.NoError(t, err)
	require.NotSame(t, partial, resumed)

	assert.Equal(t, OutcomeConverged, resumed.Outcome())
	assert.True(t, resumed.Converged())
	// 先に返されたモデルの結果は変わらない
	assert.Equal(t, OutcomeIterationCap, partial.Outcome())
	assert.False(t, partial.Converged())
	// Trajectory は直近の実行を表す
	assert.Same(t, partial.Trajectory(), resumed.Trajectory())
	assert.True(t, partial.Trajectory().Converged())
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "none", OutcomeNone.String())
	assert.Equal(t, "converged", OutcomeConverged.String())
	assert.Equal(t, "iteration_cap", OutcomeIterationCap.String())
}

func TestCreateMaximizedModel(t *testing.T) {
	o, _ := newTestOptimizer(t)
	m, err := o.CreateMaximizedModel(shifted(0, 20), 2)
	require.NoError(t, err)

	assert.InDelta(t, 0.04615398034965732, m.Components()[0].Mu(), 1e-9)
	assert.InDelta(t, 20.04615371259329, m.Components()[1].Mu(), 1e-9)
	assert.InDelta(t, -51.946536250187975, m.LogLikelihood(), 1e-9)

	_, err = o.CreateMaximizedModel(nil, 2)
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
}
