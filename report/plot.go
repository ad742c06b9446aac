package report

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/exmax/mixture"
	"github.com/YuminosukeSato/exmax/pkg/errors"
	"github.com/YuminosukeSato/exmax/preprocessing"
)

const (
	plotWidth  = 6 * vg.Inch
	plotHeight = 4 * vg.Inch
)

var componentColors = []color.Color{
	color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff},
	color.RGBA{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff},
	color.RGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff},
	color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff},
	color.RGBA{R: 0x94, G: 0x67, B: 0xbd, A: 0xff},
}

// FitPlot はサンプルの正規化ヒストグラムに混合密度と各成分の重み付き密度を重ねたグラフを作成する。
func FitPlot(model *mixture.Model) (*plot.Plot, error) {
	if model == nil {
		return nil, errors.NewInvalidInputError("report.FitPlot", "model", "must not be nil", nil)
	}
	samples := model.Samples()
	summary, err := preprocessing.Summarize(samples)
	if err != nil {
		return nil, err
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Gaussian mixture (k=%d, BIC=%.3f)", model.ComponentCount(), model.BIC())
	p.X.Label.Text = "sample"
	p.Y.Label.Text = "density"

	bins := int(math.Ceil(math.Sqrt(float64(len(samples)))))
	if bins < 5 {
		bins = 5
	}
	hist, err := plotter.NewHist(plotter.Values(samples), bins)
	if err != nil {
		return nil, errors.Wrap(err, "histogram")
	}
	hist.Normalize(1)
	hist.FillColor = color.Gray{Y: 0xd0}
	p.Add(hist)
	p.Legend.Add("samples", hist)

	components := model.Components()
	spread := 1.0
	for _, c := range components {
		if s := math.Sqrt(c.Sigma()); s > spread && !math.IsNaN(s) {
			spread = s
		}
	}
	xmin, xmax := summary.Min-3*spread, summary.Max+3*spread

	for i, c := range components {
		c := c
		fn := plotter.NewFunction(func(x float64) float64 { return c.Tau() * c.Density(x) })
		fn.XMin, fn.XMax, fn.Samples = xmin, xmax, 200
		fn.Color = componentColors[i%len(componentColors)]
		fn.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		p.Add(fn)
		p.Legend.Add(fmt.Sprintf("%d. mu=%.2f", i+1, c.Mu()), fn)
	}

	total := plotter.NewFunction(func(x float64) float64 {
		var sum float64
		for _, c := range components {
			sum += c.Tau() * c.Density(x)
		}
		return sum
	})
	total.XMin, total.XMax, total.Samples = xmin, xmax, 400
	total.Width = vg.Points(2)
	p.Add(total)
	p.Legend.Add("mixture", total)

	return p, nil
}

// TrajectoryPlot は保持されている反復ごとの対数尤度の推移をグラフにする。
func TrajectoryPlot(model *mixture.Model) (*plot.Plot, error) {
	if model == nil {
		return nil, errors.NewInvalidInputError("report.TrajectoryPlot", "model", "must not be nil", nil)
	}
	history := model.History()
	pts := make(plotter.XYs, len(history))
	for i, m := range history {
		pts[i].X = float64(m.Iteration())
		pts[i].Y = m.LogLikelihood()
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("EM log likelihood (k=%d)", model.ComponentCount())
	p.X.Label.Text = "iteration"
	p.Y.Label.Text = "log likelihood"

	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, errors.Wrap(err, "trajectory line")
	}
	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, errors.Wrap(err, "trajectory points")
	}
	p.Add(line, scatter)
	return p, nil
}

// Plot は FitPlot を format ("png", "svg", "pdf" など) で w に書き出す。
func Plot(w io.Writer, model *mixture.Model, format string) error {
	p, err := FitPlot(model)
	if err != nil {
		return err
	}
	return render(w, p, format)
}

// PlotTrajectory は TrajectoryPlot を format で w に書き出す。
func PlotTrajectory(w io.Writer, model *mixture.Model, format string) error {
	p, err := TrajectoryPlot(model)
	if err != nil {
		return err
	}
	return render(w, p, format)
}

// SavePlot は FitPlot を path に保存する。形式は拡張子で決まる。
func SavePlot(path string, model *mixture.Model) error {
	p, err := FitPlot(model)
	if err != nil {
		return err
	}
	if err := p.Save(plotWidth, plotHeight, path); err != nil {
		return errors.Wrapf(err, "save plot %s", filepath.Base(path))
	}
	return nil
}

func render(w io.Writer, p *plot.Plot, format string) error {
	wt, err := p.WriterTo(plotWidth, plotHeight, strings.ToLower(format))
	if err != nil {
		return errors.Wrapf(err, "plot format %q", format)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return errors.Wrap(err, "write plot")
	}
	return nil
}
