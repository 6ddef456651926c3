package report

import (
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/knsamati/modeltune/metrics"
	"github.com/knsamati/modeltune/pkg/errors"
)

// ValidationCurve plots the cross-validated mean of the selection metric
// against one hyperparameter, with error bars of one standard deviation,
// and saves it as a PNG. Configs that do not carry the parameter are
// skipped.
func (r *Report) ValidationCurve(param, path string) error {
	type point struct {
		x, mean, std float64
	}
	points := make([]point, 0, len(r.Summaries))
	for _, s := range r.Summaries {
		x, ok := s.Config[param]
		if !ok {
			continue
		}
		points = append(points, point{x: x, mean: s.Mean, std: s.Std})
	}
	if len(points) == 0 {
		return errors.NewValueError("report.ValidationCurve",
			"no config carries parameter "+param)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].x < points[j].x })

	xys := make(plotter.XYs, len(points))
	yerrs := make(plotter.YErrors, len(points))
	for i, pt := range points {
		xys[i] = plotter.XY{X: pt.x, Y: pt.mean}
		yerrs[i] = struct{ Low, High float64 }{Low: pt.std, High: pt.std}
	}

	p := plot.New()
	p.Title.Text = "Validation curve"
	p.X.Label.Text = param
	p.Y.Label.Text = r.Metric + " (" + directionLabel(r.direction()) + ")"

	line, scatter, err := plotter.NewLinePoints(xys)
	if err != nil {
		return errors.Wrap(err, "report: build curve")
	}
	bars, err := plotter.NewYErrorBars(struct {
		plotter.XYs
		plotter.YErrors
	}{xys, yerrs})
	if err != nil {
		return errors.Wrap(err, "report: build error bars")
	}
	p.Add(line, scatter, bars)

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "report: save plot %s", path)
	}
	return nil
}

func directionLabel(d metrics.Direction) string {
	if d == metrics.HigherIsBetter {
		return "higher is better"
	}
	return "lower is better"
}
