package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/exmax/core/model"
	"github.com/YuminosukeSato/exmax/mixture"
	"github.com/YuminosukeSato/exmax/pkg/errors"
	"github.com/YuminosukeSato/exmax/pkg/log"
	"github.com/YuminosukeSato/exmax/preprocessing"
	"github.com/YuminosukeSato/exmax/report"
	sklmixture "github.com/YuminosukeSato/exmax/sklearn/mixture"
)

func newFitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fit INPUT [OUTPUT]",
		Short: "Fit one mixture, choosing the component count by BIC",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  runFit,
	}
	cmd.Flags().Int(keyComponents, 0, "number of components (0: select by BIC)")
	cmd.Flags().String(keyWeights, "", "write the fitted weights as JSON to this file")
	return cmd
}

func runFit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	setupLogging(cfg, cmd.ErrOrStderr())
	logger := log.GetLoggerWithName("cmd.fit")

	samples, err := loadAndDescribe(logger, args[0])
	if err != nil {
		return err
	}

	gm := sklmixture.NewGaussianMixture(
		sklmixture.WithGMMNComponents(cfg.Components),
		sklmixture.WithGMMDeltaRatio(cfg.DeltaRatio),
		sklmixture.WithGMMMaxIter(cfg.MaxIterations),
		sklmixture.WithGMMRandomState(cfg.Seed),
		sklmixture.WithGMMHistoryLimit(cfg.HistoryLimit),
	)
	if err := gm.Fit(mat.NewDense(len(samples), 1, samples), nil); err != nil {
		logger.Error("fit failed", err)
		return err
	}

	if err := writeReport(cmd.OutOrStdout(), args, []*mixture.Model{gm.Model()}); err != nil {
		return err
	}

	if cfg.Plot != "" {
		if err := report.SavePlot(cfg.Plot, gm.Model()); err != nil {
			return err
		}
	}

	if cfg.Weights != "" {
		weights, err := gm.ExportWeights()
		if err != nil {
			return err
		}
		if err := model.SaveWeights(weights, cfg.Weights); err != nil {
			return err
		}
		logger.Info("weights saved", "path", cfg.Weights)
	}
	return nil
}

// loadAndDescribe は標本を読み込み、記述統計を Info で記録する
func loadAndDescribe(logger log.Logger, path string) ([]float64, error) {
	samples, err := preprocessing.LoadSamples(path)
	if err != nil {
		return nil, err
	}
	summary, err := preprocessing.Summarize(samples)
	if err != nil {
		return nil, err
	}
	logger.Info("samples loaded",
		log.SourceKey, path,
		log.SamplesKey, summary.Count,
		"min", summary.Min,
		"max", summary.Max,
		"mean", summary.Mean,
		"stddev", summary.StdDev,
	)
	return samples, nil
}

// writeReport は models の Text を out と、指定があれば OUTPUT ファイルの両方に書く
func writeReport(out io.Writer, args []string, models []*mixture.Model) (err error) {
	if len(args) < 2 {
		return report.WriteModels(out, models)
	}

	f, err := os.Create(args[1])
	if err != nil {
		return errors.Wrapf(err, "create %s", args[1])
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Wrapf(cerr, "close %s", args[1])
		}
	}()
	return report.WriteModels(out, models, f)
}
