package tune

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/knsamati/modeltune/core/model"
	"github.com/knsamati/modeltune/dataset"
	"github.com/knsamati/modeltune/metrics"
	"github.com/knsamati/modeltune/pkg/errors"
	"github.com/knsamati/modeltune/pkg/log"
	"github.com/knsamati/modeltune/preprocessing"
	"github.com/knsamati/modeltune/resample"
)

// Sweep evaluates every (fold, config) pair of the grid on a bounded
// worker pool and collects the per-fold metric values into a RecordTable.
//
// Each pair fits the preprocessing spec on its fold's analysis set only,
// trains one model, scores the assessment set and inserts its records
// atomically. Pairs share nothing but the immutable fold set, so they run
// without coordination.
//
// A pair whose solver fails with a ConvergenceError is logged as a warning
// and recorded as missing, not as a sweep failure; the selection stage
// excludes configs with incomplete coverage. Any other error aborts the
// sweep. Cancellation is observed before each pair starts; a cancelled
// pair writes nothing.
func Sweep(ctx context.Context, folds *resample.FoldSet, spec preprocessing.Spec,
	family model.Family, grid Grid, ms []metrics.Metric, workers int, logger log.Logger) (*RecordTable, error) {

	if len(grid) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyGrid, "tune.Sweep")
	}
	if len(ms) == 0 {
		return nil, errors.NewValueError("tune.Sweep", "no metrics to evaluate")
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if logger == nil {
		logger = log.GetLoggerWithName("tune")
	}

	table := NewRecordTable()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for foldIdx := 0; foldIdx < folds.K(); foldIdx++ {
		for _, config := range grid {
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}

				records, err := evaluatePair(folds, foldIdx, spec, family, config, ms)
				if err != nil {
					var convErr *errors.ConvergenceError
					if errors.As(err, &convErr) {
						logger.Warn("config skipped on fold",
							log.FoldKey, foldIdx,
							log.ConfigKey, config.Key(),
							"warning", err)
						errors.Warn(errors.NewConvergenceWarning(family.Name(), convErr.Iterations, "config "+config.Key()))
						return nil
					}
					return errors.Wrapf(err, "fold %d config %s", foldIdx, config.Key())
				}
				return table.Add(records...)
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return table, nil
}

// evaluatePair runs the preprocess-train-evaluate sequence for one
// (fold, config) pair and returns its metric records.
func evaluatePair(folds *resample.FoldSet, foldIdx int, spec preprocessing.Spec,
	family model.Family, config Config, ms []metrics.Metric) (records []MetricRecord, err error) {

	// A panicking model family must not tear the whole sweep down.
	defer errors.Recover(&err, "tune.evaluatePair")

	analysis, err := folds.Analysis(foldIdx)
	if err != nil {
		return nil, err
	}
	assessment, err := folds.Assessment(foldIdx)
	if err != nil {
		return nil, err
	}

	recipe, analysisT, err := preprocessing.FitApply(analysis, spec)
	if err != nil {
		return nil, err
	}

	X, err := analysisT.FeatureMatrix()
	if err != nil {
		return nil, err
	}
	y, err := analysisT.TargetVector()
	if err != nil {
		return nil, err
	}

	fitted, err := family.Fit(X, y, config)
	if err != nil {
		return nil, err
	}

	scores, err := scoreOn(fitted, recipe, assessment, ms)
	if err != nil {
		return nil, err
	}

	records = make([]MetricRecord, 0, len(ms))
	for _, m := range ms {
		records = append(records, MetricRecord{
			Fold:      foldIdx,
			ConfigKey: config.Key(),
			Metric:    m.Name,
			Value:     scores[m.Name],
		})
	}
	return records, nil
}

// scoreOn applies the fitted recipe to the held-out set, predicts and
// computes every metric against the target on its original scale. When
// the recipe log-transformed the target, predictions are mapped back
// before scoring so error metrics keep their real-world units.
func scoreOn(fitted model.Predictor, recipe *preprocessing.Recipe,
	heldOut *dataset.Dataset, ms []metrics.Metric) (map[string]float64, error) {

	// True targets come from the untransformed dataset.
	yTrue, err := heldOut.TargetVector()
	if err != nil {
		return nil, err
	}

	transformed, err := recipe.Apply(heldOut)
	if err != nil {
		return nil, err
	}
	X, err := transformed.FeatureMatrix()
	if err != nil {
		return nil, err
	}

	predictions, err := fitted.Predict(X)
	if err != nil {
		return nil, err
	}

	n, _ := predictions.Dims()
	yPred := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		yPred.SetVec(i, recipe.InverseTarget(predictions.At(i, 0)))
	}

	scores := make(map[string]float64, len(ms))
	for _, m := range ms {
		value, err := m.Fn(yTrue, yPred)
		if err != nil {
			return nil, errors.Wrapf(err, "metric %s", m.Name)
		}
		scores[m.Name] = value
	}
	return scores, nil
}
