package preprocessing

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/exmax/pkg/errors"
)

func TestParseSamples(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []float64
	}{
		{"one per line", "1\n2.5\n-3\n", []float64{1, 2.5, -3}},
		{"mixed whitespace", "1 2\t3\r\n  4\n\n5", []float64{1, 2, 3, 4, 5}},
		{"scientific notation", "1e2 -2.5E-1", []float64{100, -0.25}},
		{"junk discarded", "abc 1 x2 2 3,4 5", []float64{1, 2, 5}},
		{"non finite discarded", "NaN 1 Inf -Inf 2", []float64{1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSamples(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSamplesEmpty(t *testing.T) {
	for _, input := range []string{"", "   \n", "a b c"} {
		_, err := ParseSamples(strings.NewReader(input))
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrEmptyData), "input %q", input)
	}
}

func TestLoadSamples(t *testing.T) {
	path := filepath.Join(t.TempDir(), "samples.txt")
	require.NoError(t, os.WriteFile(path, []byte("1 1 1\n9 9 9\n"), 0o644))

	got, err := LoadSamples(path)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1, 1, 9, 9, 9}, got)

	_, err = LoadSamples(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.txt")
}
