package tune

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/knsamati/modeltune/metrics"
	"github.com/knsamati/modeltune/pkg/errors"
)

// Strategy names a rule for picking the winning config from the
// per-config summaries.
type Strategy string

const (
	// StrategyBestMean picks the config whose mean metric value is best.
	StrategyBestMean Strategy = "best_mean"

	// StrategyOneStdErr picks the simplest config whose mean is within one
	// standard error of the best mean. Simplicity is the config's parameter
	// magnitude, so stronger regularization wins when performance ties.
	StrategyOneStdErr Strategy = "one_std_err"
)

// ConfigSummary aggregates one config's per-fold values for the
// selection metric.
type ConfigSummary struct {
	Config Config  `json:"config"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	StdErr float64 `json:"std_err"`
	Folds  int     `json:"folds"`
}

// SelectionResult reports the winning config together with the full
// per-config aggregation it was chosen from.
type SelectionResult struct {
	Best      Config            `json:"best"`
	Metric    string            `json:"metric"`
	Direction metrics.Direction `json:"direction"`
	Strategy  Strategy          `json:"strategy"`
	Summaries []ConfigSummary   `json:"summaries"`
}

// SelectBest aggregates the record table per config and picks a winner
// for the given metric.
//
// Only configs with a value on every fold are eligible; a config with
// partial coverage (its solver diverged on some folds) is excluded with a
// CoverageWarning rather than compared on a flattering subset of folds.
// Ties on the mean break toward the smaller parameter magnitude, then the
// lexicographically smaller key, so selection is deterministic.
func SelectBest(table *RecordTable, grid Grid, metric metrics.Metric,
	strategy Strategy, expectedFolds int) (*SelectionResult, error) {

	if table == nil || table.Len() == 0 {
		return nil, errors.Wrap(errors.ErrEmptyGrid, "tune.SelectBest: no records to select from")
	}
	if !table.HasMetric(metric.Name) {
		return nil, errors.Wrapf(errors.ErrNoMetric, "tune.SelectBest: %q", metric.Name)
	}
	if expectedFolds <= 0 {
		return nil, errors.NewValidationError("expectedFolds", "must be positive", expectedFolds)
	}

	values := table.ValuesByConfig(metric.Name)

	byKey := make(map[string]Config, len(grid))
	for _, config := range grid {
		byKey[config.Key()] = config
	}

	summaries := make([]ConfigSummary, 0, len(grid))
	for _, config := range grid {
		vals := values[config.Key()]
		if len(vals) < expectedFolds {
			errors.Warn(errors.NewCoverageWarning(config.Key(), expectedFolds-len(vals), expectedFolds))
			continue
		}
		mean, std := stat.MeanStdDev(vals, nil)
		if len(vals) < 2 {
			std = 0
		}
		summaries = append(summaries, ConfigSummary{
			Config: config.Clone(),
			Mean:   mean,
			Std:    std,
			StdErr: std / math.Sqrt(float64(len(vals))),
			Folds:  len(vals),
		})
	}
	if len(summaries) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyGrid, "tune.SelectBest: no config covered every fold")
	}

	// Stable presentation order: best mean first.
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaryLess(summaries[i], summaries[j], metric.Direction)
	})

	best := summaries[0]
	if strategy == StrategyOneStdErr {
		best = oneStdErrPick(summaries, metric.Direction)
	}

	return &SelectionResult{
		Best:      best.Config.Clone(),
		Metric:    metric.Name,
		Direction: metric.Direction,
		Strategy:  strategy,
		Summaries: summaries,
	}, nil
}

// BestSummary returns the aggregation row of the winning config. Under the
// one-standard-error rule this is not necessarily the first summary.
func (r *SelectionResult) BestSummary() ConfigSummary {
	key := r.Best.Key()
	for _, s := range r.Summaries {
		if s.Config.Key() == key {
			return s
		}
	}
	return ConfigSummary{}
}

// summaryLess orders summaries best-first for the metric direction,
// breaking mean ties by parameter magnitude and then key.
func summaryLess(a, b ConfigSummary, dir metrics.Direction) bool {
	if a.Mean != b.Mean {
		if dir == metrics.HigherIsBetter {
			return a.Mean > b.Mean
		}
		return a.Mean < b.Mean
	}
	am, bm := a.Config.Magnitude(), b.Config.Magnitude()
	if am != bm {
		return am < bm
	}
	return a.Config.Key() < b.Config.Key()
}

// oneStdErrPick returns the summary with the largest parameter magnitude
// among those whose mean is within one standard error of the best mean.
// The summaries must already be sorted best-first.
func oneStdErrPick(summaries []ConfigSummary, dir metrics.Direction) ConfigSummary {
	best := summaries[0]
	threshold := best.Mean + best.StdErr
	if dir == metrics.HigherIsBetter {
		threshold = best.Mean - best.StdErr
	}

	pick := best
	for _, s := range summaries[1:] {
		within := s.Mean <= threshold
		if dir == metrics.HigherIsBetter {
			within = s.Mean >= threshold
		}
		if !within {
			continue
		}
		if s.Config.Magnitude() > pick.Config.Magnitude() {
			pick = s
		}
	}
	return pick
}
