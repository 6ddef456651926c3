package metrics

import (
	"gonum.org/v1/gonum/mat"

	"github.com/knsamati/modeltune/pkg/errors"
)

// Direction states whether smaller or larger metric values are better, so
// aggregation and selection can rank configs without knowing the metric.
type Direction int

const (
	// LowerIsBetter applies to error metrics such as RMSE and MAE.
	LowerIsBetter Direction = iota
	// HigherIsBetter applies to score metrics such as R².
	HigherIsBetter
)

// Metric is a named scoring function. Fn must be a pure function of its
// inputs: no hidden state, same inputs, same value.
type Metric struct {
	Name      string
	Direction Direction
	Fn        func(yTrue, yPred *mat.VecDense) (float64, error)
}

// Standard metric descriptors.
var (
	MetricRMSE = Metric{Name: "rmse", Direction: LowerIsBetter, Fn: RMSE}
	MetricMSE  = Metric{Name: "mse", Direction: LowerIsBetter, Fn: MSE}
	MetricMAE  = Metric{Name: "mae", Direction: LowerIsBetter, Fn: MAE}
	MetricR2   = Metric{Name: "r2", Direction: HigherIsBetter, Fn: R2Score}
	MetricMAPE = Metric{Name: "mape", Direction: LowerIsBetter, Fn: MAPE}
)

// ByName resolves a metric descriptor from its name.
func ByName(name string) (Metric, error) {
	switch name {
	case "rmse":
		return MetricRMSE, nil
	case "mse":
		return MetricMSE, nil
	case "mae":
		return MetricMAE, nil
	case "r2":
		return MetricR2, nil
	case "mape":
		return MetricMAPE, nil
	default:
		return Metric{}, errors.Wrapf(errors.ErrNoMetric, "unknown metric %q", name)
	}
}
