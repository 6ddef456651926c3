package tune

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knsamati/modeltune/metrics"
	"github.com/knsamati/modeltune/pkg/errors"
)

// fillTable inserts one rmse record per (config, fold) from the given
// per-config fold values.
func fillTable(t *testing.T, values map[string][]float64) *RecordTable {
	t.Helper()
	table := NewRecordTable()
	for key, folds := range values {
		for fold, v := range folds {
			require.NoError(t, table.Add(MetricRecord{
				Fold: fold, ConfigKey: key, Metric: "rmse", Value: v,
			}))
		}
	}
	return table
}

func TestSelectBestMean(t *testing.T) {
	grid := GridFromValues("penalty", []float64{0, 1, 10})
	table := fillTable(t, map[string][]float64{
		"penalty=0":  {0.30, 0.32, 0.28, 0.31, 0.29},
		"penalty=1":  {0.20, 0.22, 0.18, 0.21, 0.19},
		"penalty=10": {0.50, 0.52, 0.48, 0.51, 0.49},
	})

	result, err := SelectBest(table, grid, metrics.MetricRMSE, StrategyBestMean, 5)
	require.NoError(t, err)

	assert.Equal(t, Config{"penalty": 1}, result.Best)
	assert.Equal(t, StrategyBestMean, result.Strategy)
	require.Len(t, result.Summaries, 3)
	assert.InDelta(t, 0.20, result.Summaries[0].Mean, 1e-12)
	assert.Equal(t, 5, result.Summaries[0].Folds)
}

func TestSelectBestTieBreak(t *testing.T) {
	grid := GridFromValues("penalty", []float64{10, 1})
	same := []float64{0.2, 0.2, 0.2}
	table := fillTable(t, map[string][]float64{
		"penalty=10": same,
		"penalty=1":  same,
	})

	result, err := SelectBest(table, grid, metrics.MetricRMSE, StrategyBestMean, 3)
	require.NoError(t, err)

	// Equal means: the smaller-magnitude config wins.
	assert.Equal(t, Config{"penalty": 1}, result.Best)
}

func TestSelectBestHigherIsBetter(t *testing.T) {
	grid := GridFromValues("penalty", []float64{0, 1})
	table := NewRecordTable()
	for fold, v := range []float64{0.90, 0.91, 0.89} {
		require.NoError(t, table.Add(MetricRecord{Fold: fold, ConfigKey: "penalty=0", Metric: "r2", Value: v}))
	}
	for fold, v := range []float64{0.70, 0.71, 0.69} {
		require.NoError(t, table.Add(MetricRecord{Fold: fold, ConfigKey: "penalty=1", Metric: "r2", Value: v}))
	}

	result, err := SelectBest(table, grid, metrics.MetricR2, StrategyBestMean, 3)
	require.NoError(t, err)
	assert.Equal(t, Config{"penalty": 0}, result.Best)
}

func TestSelectOneStdErr(t *testing.T) {
	grid := GridFromValues("penalty", []float64{0, 1, 10})
	table := fillTable(t, map[string][]float64{
		"penalty=0":  {0.10, 0.20, 0.30, 0.15, 0.25},
		"penalty=1":  {0.12, 0.22, 0.32, 0.17, 0.27},
		"penalty=10": {0.60, 0.62, 0.58, 0.61, 0.59},
	})

	result, err := SelectBest(table, grid, metrics.MetricRMSE, StrategyOneStdErr, 5)
	require.NoError(t, err)

	// penalty=0 has mean 0.20 and stderr ~0.035; penalty=1's mean 0.22 is
	// within that band, so the stronger regularization wins.
	assert.Equal(t, Config{"penalty": 1}, result.Best)
	assert.Equal(t, StrategyOneStdErr, result.Strategy)

	// BestSummary follows the pick, not the best-mean row at the front.
	best := result.BestSummary()
	assert.Equal(t, "penalty=1", best.Config.Key())
	assert.InDelta(t, 0.22, best.Mean, 1e-12)
	assert.NotEqual(t, result.Summaries[0].Config.Key(), best.Config.Key())
}

func TestSelectExcludesPartialCoverage(t *testing.T) {
	var warned []error
	errors.SetWarningHandler(func(w error) { warned = append(warned, w) })
	defer errors.SetWarningHandler(nil)

	grid := GridFromValues("penalty", []float64{0, 1})
	table := fillTable(t, map[string][]float64{
		// penalty=0 looks better on the folds it finished, but it only
		// finished two of three.
		"penalty=0": {0.01, 0.02},
		"penalty=1": {0.20, 0.22, 0.21},
	})

	result, err := SelectBest(table, grid, metrics.MetricRMSE, StrategyBestMean, 3)
	require.NoError(t, err)

	assert.Equal(t, Config{"penalty": 1}, result.Best)
	assert.Len(t, result.Summaries, 1)

	require.Len(t, warned, 1)
	var cw *errors.CoverageWarning
	require.ErrorAs(t, warned[0], &cw)
	assert.Equal(t, "penalty=0", cw.Config)
	assert.Equal(t, 1, cw.MissingFolds)
}

func TestSelectErrors(t *testing.T) {
	grid := GridFromValues("penalty", []float64{0})

	t.Run("empty table", func(t *testing.T) {
		_, err := SelectBest(NewRecordTable(), grid, metrics.MetricRMSE, StrategyBestMean, 3)
		assert.ErrorIs(t, err, errors.ErrEmptyGrid)
	})

	t.Run("metric absent", func(t *testing.T) {
		table := fillTable(t, map[string][]float64{"penalty=0": {0.1, 0.2, 0.3}})
		_, err := SelectBest(table, grid, metrics.MetricMAE, StrategyBestMean, 3)
		assert.ErrorIs(t, err, errors.ErrNoMetric)
	})

	t.Run("no full coverage anywhere", func(t *testing.T) {
		errors.SetWarningHandler(func(error) {})
		defer errors.SetWarningHandler(nil)

		table := fillTable(t, map[string][]float64{"penalty=0": {0.1}})
		_, err := SelectBest(table, grid, metrics.MetricRMSE, StrategyBestMean, 3)
		assert.ErrorIs(t, err, errors.ErrEmptyGrid)
	})
}
