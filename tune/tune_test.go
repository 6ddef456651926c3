package tune

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/knsamati/modeltune/dataset"
	"github.com/knsamati/modeltune/linear"
	"github.com/knsamati/modeltune/metrics"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// linearDataset builds n records of y = 2x + 1 + noise, the kind of
// near-linear data where an unregularized fit should win the sweep.
func linearDataset(t *testing.T, n int) *dataset.Dataset {
	t.Helper()
	rng := rand.New(rand.NewPCG(7, 7))
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i := 0; i < n; i++ {
		xs[i] = float64(i)
		ys[i] = 2*xs[i] + 1 + 0.05*rng.NormFloat64()
	}
	ds, err := dataset.New("y",
		dataset.Column{Name: "x", Kind: dataset.Numeric, Floats: xs},
		dataset.Column{Name: "y", Kind: dataset.Numeric, Floats: ys},
	)
	require.NoError(t, err)
	return ds
}

func linearExperiment() *Experiment {
	return &Experiment{
		Family:        &linear.ElasticNetFamily{},
		Grid:          GridFromValues("penalty", []float64{0, 1}),
		Metrics:       []metrics.Metric{metrics.MetricRMSE, metrics.MetricMAE},
		Folds:         5,
		TrainFraction: 0.75,
		Seed:          42,
	}
}

func TestExperimentRunEndToEnd(t *testing.T) {
	ds := linearDataset(t, 20)

	result, err := linearExperiment().Run(context.Background(), ds)
	require.NoError(t, err)

	require.Equal(t, 15, result.Split.Train.Len())
	require.Equal(t, 5, result.Split.Test.Len())
	require.Equal(t, 5, result.Folds.K())

	// 2 configs x 5 folds x 2 metrics.
	assert.Equal(t, 20, result.Table.Len())

	// The unregularized fit tracks the nearly noise-free line best.
	assert.Equal(t, 0.0, result.Selection.Best["penalty"])
	assert.Equal(t, "rmse", result.Selection.Metric)
	assert.Len(t, result.Selection.Summaries, 2)

	require.NotNil(t, result.Final)
	assert.Contains(t, result.Final.TestMetrics, "rmse")
	assert.Contains(t, result.Final.TestMetrics, "mae")
	assert.Less(t, result.Final.TestMetrics["rmse"], 0.5)

	en, ok := result.Final.Model.(*linear.ElasticNet)
	require.True(t, ok)
	coef := en.Coefficients()
	require.Len(t, coef, 1)
	assert.InDelta(t, 2.0, coef[0], 0.1)

	assert.NotEmpty(t, result.RunID)
}

func TestExperimentRunDeterministic(t *testing.T) {
	ds := linearDataset(t, 24)

	first, err := linearExperiment().Run(context.Background(), ds)
	require.NoError(t, err)

	exp := linearExperiment()
	exp.Workers = 1
	second, err := exp.Run(context.Background(), ds)
	require.NoError(t, err)

	assert.Equal(t, first.Selection.Best, second.Selection.Best)
	if diff := cmp.Diff(first.Table.Records(), second.Table.Records()); diff != "" {
		t.Errorf("record tables differ between runs (-first +second):\n%s", diff)
	}
	assert.Equal(t, first.Final.TestMetrics, second.Final.TestMetrics)
}

func TestExperimentRunCancelled(t *testing.T) {
	ds := linearDataset(t, 40)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := linearExperiment().Run(ctx, ds)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExperimentRunValidation(t *testing.T) {
	ds := linearDataset(t, 20)

	t.Run("no family", func(t *testing.T) {
		exp := linearExperiment()
		exp.Family = nil
		_, err := exp.Run(context.Background(), ds)
		assert.Error(t, err)
	})

	t.Run("no metrics", func(t *testing.T) {
		exp := linearExperiment()
		exp.Metrics = nil
		_, err := exp.Run(context.Background(), ds)
		assert.Error(t, err)
	})

	t.Run("unknown selection metric", func(t *testing.T) {
		exp := linearExperiment()
		exp.SelectionMetric = "accuracy"
		_, err := exp.Run(context.Background(), ds)
		assert.Error(t, err)
	})
}
