// Package report は混合モデルを人が読める形式（テキスト、表、グラフ）で出力します。
package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/YuminosukeSato/exmax/mixture"
	"github.com/YuminosukeSato/exmax/pkg/errors"
)

const (
	heavyRule = "================================================"
	lightRule = "------------------------------------------------"
)

// Text は model の成分、対数尤度、BIC と反復履歴を w に書き出す。
// 履歴は古い順に並び、番号はイテレーション番号 + 1。
func Text(w io.Writer, model *mixture.Model) error {
	if model == nil {
		return errors.NewInvalidInputError("report.Text", "model", "must not be nil", nil)
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, heavyRule)
	fmt.Fprintf(bw, "Components: %d\n", model.ComponentCount())
	fmt.Fprintf(bw, "Log Likelihood: %.3f\n", model.LogLikelihood())
	fmt.Fprintf(bw, "BIC: %.3f\n", model.BIC())
	fmt.Fprintln(bw, lightRule)
	fmt.Fprintln(bw, "Final Components:")
	for i, c := range model.Components() {
		fmt.Fprintf(bw, "%d. Mu=%.3f Sigma=%.3f\n", i+1, c.Mu(), c.Sigma())
	}
	fmt.Fprintln(bw, lightRule)
	fmt.Fprintln(bw, "Iterations:")
	for _, m := range model.History() {
		var sb strings.Builder
		for k, c := range m.Components() {
			fmt.Fprintf(&sb, "Mu%d=%.1f ", k+1, c.Mu())
		}
		fmt.Fprintf(bw, "%d. %sLk=%.3f\n", m.Iteration()+1, sb.String(), m.LogLikelihood())
	}

	if err := bw.Flush(); err != nil {
		return errors.Wrap(err, "write report")
	}
	return nil
}

// WriteModels は各モデルの Text を順に w と extra (nil 可) の両方に書き出す。
func WriteModels(w io.Writer, models []*mixture.Model, extra ...io.Writer) error {
	writers := []io.Writer{w}
	for _, e := range extra {
		if e != nil {
			writers = append(writers, e)
		}
	}
	out := io.MultiWriter(writers...)

	for _, m := range models {
		if err := Text(out, m); err != nil {
			return err
		}
	}
	return nil
}
