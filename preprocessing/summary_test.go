package preprocessing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/exmax/pkg/errors"
)

func TestSummarize(t *testing.T) {
	samples := []float64{9, 1, 9, 1, 9, 1}
	s, err := Summarize(samples)
	require.NoError(t, err)

	assert.Equal(t, 6, s.Count)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 9.0, s.Max)
	assert.Equal(t, 8.0, s.Range())
	assert.InDelta(t, 5.0, s.Mean, 1e-12)
	assert.InDelta(t, math.Sqrt(96.0/5), s.StdDev, 1e-12)
	assert.Equal(t, 1.0, s.Q1)
	assert.Equal(t, 1.0, s.Median)
	assert.Equal(t, 9.0, s.Q3)

	// 入力は並べ替えられない
	assert.Equal(t, []float64{9, 1, 9, 1, 9, 1}, samples)
}

func TestSummarizeSingleSample(t *testing.T) {
	s, err := Summarize([]float64{5})
	require.NoError(t, err)
	assert.Equal(t, Summary{Count: 1, Min: 5, Max: 5, Mean: 5, Q1: 5, Median: 5, Q3: 5}, s)
}

func TestSummarizeEmpty(t *testing.T) {
	_, err := Summarize(nil)
	assert.True(t, errors.Is(err, errors.ErrEmptyData))
}
