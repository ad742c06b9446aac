package report

import (
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/YuminosukeSato/exmax/metrics"
	"github.com/YuminosukeSato/exmax/mixture"
	"github.com/YuminosukeSato/exmax/pkg/errors"
)

// Table は成分数ごとのモデルを比較する表を w に書き出す。
// BIC が最大のモデルの行には "*" が付く。
func Table(w io.Writer, models []*mixture.Model) error {
	if len(models) == 0 {
		return errors.NewInvalidInputError("report.Table", "models", "must not be empty", 0)
	}

	bics := make([]float64, len(models))
	for i, m := range models {
		if m == nil {
			return errors.NewInvalidInputError("report.Table", "models", "must not contain nil", i)
		}
		bics[i] = m.BIC()
	}
	best, err := metrics.BestScore(bics)
	if err != nil {
		best = -1
	}

	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Components", "Iterations", "Converged", "Log Likelihood", "BIC", "AIC", "Best"})
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_CENTER,
		tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_CENTER,
	})

	for i, m := range models {
		converged := "-"
		if m.Outcome() != mixture.OutcomeNone {
			converged = strconv.FormatBool(m.Converged())
		}
		mark := ""
		if i == best {
			mark = "*"
		}
		table.Append([]string{
			strconv.Itoa(m.ComponentCount()),
			strconv.Itoa(m.Iteration()),
			converged,
			strconv.FormatFloat(m.LogLikelihood(), 'f', 3, 64),
			strconv.FormatFloat(m.BIC(), 'f', 3, 64),
			strconv.FormatFloat(m.AIC(), 'f', 3, 64),
			mark,
		})
	}
	table.Render()
	return nil
}
