package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/exmax/core/model"
	"github.com/YuminosukeSato/exmax/pkg/errors"
	"github.com/YuminosukeSato/exmax/pkg/log"
)

var clusterShape = []float64{-1.5, -1.1, -0.8, -0.6, -0.3, -0.1, 0.0, 0.2, 0.4, 0.7, 0.9, 1.2, 1.6}

// writeSamples は 0 と 20 を中心とする二峰の標本ファイルを作る
func writeSamples(t *testing.T) string {
	t.Helper()
	var sb strings.Builder
	for _, off := range []float64{0, 20} {
		for _, v := range clusterShape {
			fmt.Fprintf(&sb, "%g\n", v+off)
		}
	}
	path := filepath.Join(t.TempDir(), "samples.txt")
	require.NoError(t, os.WriteFile(path, []byte(sb.String()), 0o600))
	return path
}

// execute はルートコマンドを args で実行し、標準出力の内容を返す
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(func() {
		log.UninstallWarningHandler()
		log.SetLevel(log.LevelWarn)
	})

	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), err
}

func TestFitCommand(t *testing.T) {
	input := writeSamples(t)
	dir := t.TempDir()
	output := filepath.Join(dir, "result.txt")
	weightsPath := filepath.Join(dir, "weights.json")
	plotPath := filepath.Join(dir, "fit.png")

	stdout, err := execute(t, "fit", input, output,
		"--seed", "1", "--log-level", "error",
		"--weights", weightsPath, "--plot", plotPath)
	require.NoError(t, err)

	assert.Contains(t, stdout, "Components: 2\n")
	assert.Contains(t, stdout, "Final Components:")

	written, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, stdout, string(written))

	weights, err := model.LoadWeights(weightsPath)
	require.NoError(t, err)
	assert.Equal(t, "GaussianMixture", weights.ModelType)
	assert.Equal(t, 2, weights.ComponentCount())

	img, err := os.ReadFile(plotPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, []byte("\x89PNG")))
}

func TestFitCommandFixedComponents(t *testing.T) {
	stdout, err := execute(t, "fit", writeSamples(t), "--components", "3", "--seed", "1", "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Components: 3\n")
}

func TestFitCommandJSONLogs(t *testing.T) {
	stdout, err := execute(t, "fit", writeSamples(t), "--seed", "1", "--log-format", "json", "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Components: 2\n")
}

func TestFitCommandMissingInput(t *testing.T) {
	_, err := execute(t, "fit", filepath.Join(t.TempDir(), "missing.txt"), "--log-level", "error")
	assert.Error(t, err)

	_, err = execute(t, "fit")
	assert.Error(t, err)
}

func TestBatchCommand(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "result.txt")
	plotPath := filepath.Join(dir, "best.svg")

	stdout, err := execute(t, "batch", writeSamples(t), output,
		"--max-components", "4", "--table", "--seed", "1", "--log-level", "error", "--plot", plotPath)
	require.NoError(t, err)

	for k := 2; k <= 4; k++ {
		assert.Contains(t, stdout, fmt.Sprintf("Components: %d\n", k))
	}
	assert.Contains(t, stdout, "BIC")
	assert.Contains(t, stdout, "*")

	written, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(string(written), "Components: "))
	assert.NotContains(t, string(written), "*")

	svg, err := os.ReadFile(plotPath)
	require.NoError(t, err)
	assert.Contains(t, string(svg), "<svg")
}

func TestBatchCommandTooFewComponents(t *testing.T) {
	_, err := execute(t, "batch", writeSamples(t), "--max-components", "1", "--log-level", "error")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
}

func TestLoadConfigPrecedence(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "exmax.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(
		"max-iterations: 7\ndelta-ratio: 0.2\nlog-level: info\ncomponents: 4\n"), 0o600))
	t.Setenv("EXMAX_DELTA_RATIO", "0.5")

	fit, _, err := newRootCmd().Find([]string{"fit"})
	require.NoError(t, err)
	require.NoError(t, fit.ParseFlags([]string{"--config", cfgPath, "--seed", "3", "--components", "2"}))

	cfg, err := loadConfig(fit)
	require.NoError(t, err)

	assert.Equal(t, 0.5, cfg.DeltaRatio)
	assert.Equal(t, 7, cfg.MaxIterations)
	assert.Equal(t, int64(3), cfg.Seed)
	assert.Equal(t, 2, cfg.Components)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
}

func TestLoadConfigDefaults(t *testing.T) {
	batch, _, err := newRootCmd().Find([]string{"batch"})
	require.NoError(t, err)
	require.NoError(t, batch.ParseFlags(nil))

	cfg, err := loadConfig(batch)
	require.NoError(t, err)

	assert.Equal(t, defaultDeltaRatio, cfg.DeltaRatio)
	assert.Equal(t, defaultMaxIterations, cfg.MaxIterations)
	assert.Equal(t, int64(-1), cfg.Seed)
	assert.Equal(t, defaultMaxComponents, cfg.MaxComponents)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.False(t, cfg.Table)
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		param string
	}{
		{name: "negative delta ratio", args: []string{"--delta-ratio", "-1"}, param: keyDeltaRatio},
		{name: "negative components", args: []string{"--components", "-1"}, param: keyComponents},
		{name: "negative history limit", args: []string{"--history-limit", "-2"}, param: keyHistoryLimit},
		{name: "unknown log level", args: []string{"--log-level", "loud"}, param: keyLogLevel},
		{name: "unknown log format", args: []string{"--log-format", "xml"}, param: keyLogFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fit, _, err := newRootCmd().Find([]string{"fit"})
			require.NoError(t, err)
			require.NoError(t, fit.ParseFlags(tt.args))

			_, err = loadConfig(fit)
			var ve *errors.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.param, ve.ParamName)
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	fit, _, err := newRootCmd().Find([]string{"fit"})
	require.NoError(t, err)
	require.NoError(t, fit.ParseFlags([]string{"--config", filepath.Join(t.TempDir(), "nope.yaml")}))

	_, err = loadConfig(fit)
	assert.Error(t, err)
}
