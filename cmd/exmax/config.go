package main

import (
	"io"
	"math"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/YuminosukeSato/exmax/mixture"
	"github.com/YuminosukeSato/exmax/pkg/errors"
	"github.com/YuminosukeSato/exmax/pkg/log"
)

const (
	keyConfig        = "config"
	keyLogLevel      = "log-level"
	keyLogFormat     = "log-format"
	keyDeltaRatio    = "delta-ratio"
	keyMaxIterations = "max-iterations"
	keySeed          = "seed"
	keyHistoryLimit  = "history-limit"
	keyPlot          = "plot"
	keyComponents    = "components"
	keyWeights       = "weights"
	keyMaxComponents = "max-components"
	keyTable         = "table"

	envPrefix = "exmax"

	defaultDeltaRatio    = mixture.DefaultDeltaRatio
	defaultMaxIterations = mixture.DefaultMaxIterations
	defaultMaxComponents = 5
)

// Config はフラグ、環境変数、設定ファイルをまとめた実行設定
type Config struct {
	DeltaRatio    float64
	MaxIterations int
	Seed          int64
	HistoryLimit  int
	Components    int
	MaxComponents int
	LogLevel      string
	LogFormat     string
	Plot          string
	Weights       string
	Table         bool
}

// loadConfig は cmd のフラグを viper に束ね、優先順位
// フラグ > 環境変数 (EXMAX_*) > 設定ファイル > デフォルト で値を解決する
func loadConfig(cmd *cobra.Command) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, errors.Wrap(err, "bind flags")
	}

	if path := v.GetString(keyConfig); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
	}

	cfg := &Config{
		DeltaRatio:    v.GetFloat64(keyDeltaRatio),
		MaxIterations: v.GetInt(keyMaxIterations),
		Seed:          v.GetInt64(keySeed),
		HistoryLimit:  v.GetInt(keyHistoryLimit),
		Components:    v.GetInt(keyComponents),
		MaxComponents: v.GetInt(keyMaxComponents),
		LogLevel:      v.GetString(keyLogLevel),
		LogFormat:     v.GetString(keyLogFormat),
		Plot:          v.GetString(keyPlot),
		Weights:       v.GetString(keyWeights),
		Table:         v.GetBool(keyTable),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if math.IsNaN(c.DeltaRatio) || math.IsInf(c.DeltaRatio, 0) || c.DeltaRatio < 0 {
		return errors.NewValidationError(keyDeltaRatio, "must be a finite non-negative number", c.DeltaRatio)
	}
	if c.Components < 0 {
		return errors.NewValidationError(keyComponents, "must be non-negative (0 selects by BIC)", c.Components)
	}
	if c.HistoryLimit < 0 {
		return errors.NewValidationError(keyHistoryLimit, "must be non-negative", c.HistoryLimit)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return errors.NewValidationError(keyLogLevel, err.Error(), c.LogLevel)
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return errors.NewValidationError(keyLogFormat, "must be console or json", c.LogFormat)
	}
	return nil
}

// setupLogging はプロセス全体のロガーを差し替え、警告をロガーに流す
func setupLogging(c *Config, w io.Writer) {
	level, _ := log.ParseLevel(c.LogLevel)
	if c.LogFormat == "json" {
		log.SetupLogger(w, level)
	} else {
		log.SetLogger(log.NewConsoleLogger(w, level))
	}
	log.InstallWarningHandler()
}

// optimizerOptions は Config から mixture.Optimizer のオプションを作る
func (c *Config) optimizerOptions() []mixture.Option {
	return []mixture.Option{
		mixture.WithDeltaRatio(c.DeltaRatio),
		mixture.WithMaxIterations(c.MaxIterations),
		mixture.WithRandomState(c.Seed),
		mixture.WithHistoryLimit(c.HistoryLimit),
	}
}
