package main

import (
	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/exmax/metrics"
	"github.com/YuminosukeSato/exmax/mixture"
	"github.com/YuminosukeSato/exmax/pkg/log"
	"github.com/YuminosukeSato/exmax/report"
)

func newBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch INPUT [OUTPUT]",
		Short: "Fit mixtures with 2..max-components components and report each",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  runBatch,
	}
	cmd.Flags().Int(keyMaxComponents, defaultMaxComponents, "largest component count to fit")
	cmd.Flags().Bool(keyTable, false, "print a BIC comparison table after the reports")
	return cmd
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	setupLogging(cfg, cmd.ErrOrStderr())
	logger := log.GetLoggerWithName("cmd.batch")

	samples, err := loadAndDescribe(logger, args[0])
	if err != nil {
		return err
	}

	opt := mixture.NewOptimizer(cfg.optimizerOptions()...)
	models, err := opt.CreateMaximizedModels(samples, cfg.MaxComponents)
	if err != nil {
		logger.Error("batch failed", err)
		return err
	}
	logger.Info("batch completed",
		log.OperationKey, log.OperationBatch,
		log.ComponentsKey, cfg.MaxComponents,
	)

	out := cmd.OutOrStdout()
	if err := writeReport(out, args, models); err != nil {
		return err
	}

	if cfg.Table {
		if err := report.Table(out, models); err != nil {
			return err
		}
	}

	if cfg.Plot != "" {
		bics := make([]float64, len(models))
		for i, m := range models {
			bics[i] = m.BIC()
		}
		best, err := metrics.BestScore(bics)
		if err != nil {
			return err
		}
		if err := report.SavePlot(cfg.Plot, models[best]); err != nil {
			return err
		}
	}
	return nil
}
