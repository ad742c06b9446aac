// Command exmax は標本ファイルに一次元混合ガウスモデルを当てはめる CLI です。
//
//	exmax fit samples.txt result.txt --plot fit.png --weights model.json
//	exmax batch samples.txt result.txt --max-components 5 --table
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "exmax",
		Short: "Fit univariate Gaussian mixtures by EM",
		Long: `exmax fits univariate Gaussian mixture models to whitespace separated
samples with expectation maximization. The number of components is chosen
by BIC unless it is given explicitly.

Flags can also be set by EXMAX_ environment variables (EXMAX_DELTA_RATIO,
EXMAX_LOG_LEVEL, ...) or by a config file passed with --config.`,
		SilenceUsage: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.String(keyConfig, "", "config file (yaml, toml or json)")
	pf.String(keyLogLevel, "warn", "log level: debug, info, warn, error")
	pf.String(keyLogFormat, "console", "log format: console or json")
	pf.Float64(keyDeltaRatio, defaultDeltaRatio, "convergence threshold as a ratio of the initial log likelihood")
	pf.Int(keyMaxIterations, defaultMaxIterations, "maximum EM steps per fit")
	pf.Int64(keySeed, -1, "random seed for the initial placement (negative: time based)")
	pf.Int(keyHistoryLimit, 0, "number of iterations kept per fit (0: unlimited)")
	pf.String(keyPlot, "", "write a plot of the selected model (.png, .svg, .pdf)")

	rootCmd.AddCommand(newFitCmd(), newBatchCmd())
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
