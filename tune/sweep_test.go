package tune

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/knsamati/modeltune/core/model"
	"github.com/knsamati/modeltune/metrics"
	"github.com/knsamati/modeltune/pkg/errors"
	"github.com/knsamati/modeltune/preprocessing"
	"github.com/knsamati/modeltune/resample"
)

// meanPredictor predicts the training target mean for every record.
type meanPredictor struct{ mean float64 }

func (p *meanPredictor) Predict(X mat.Matrix) (mat.Matrix, error) {
	n, _ := X.Dims()
	out := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		out.Set(i, 0, p.mean)
	}
	return out, nil
}

// flakyFamily diverges whenever "penalty" matches failOn.
type flakyFamily struct {
	failOn float64
}

func (flakyFamily) Name() string { return "flaky" }

func (f flakyFamily) Fit(_, y mat.Matrix, params map[string]float64) (model.Predictor, error) {
	if params["penalty"] == f.failOn {
		return nil, errors.NewConvergenceError("flaky", 100, 1e-6, 0.5)
	}
	n, _ := y.Dims()
	var sum float64
	for i := 0; i < n; i++ {
		sum += y.At(i, 0)
	}
	return &meanPredictor{mean: sum / float64(n)}, nil
}

func testFolds(t *testing.T) *resample.FoldSet {
	t.Helper()
	folds, err := resample.KFold(linearDataset(t, 12), 3, 1)
	require.NoError(t, err)
	return folds
}

func TestSweepFillsTable(t *testing.T) {
	folds := testFolds(t)
	grid := GridFromValues("penalty", []float64{0, 1})

	table, err := Sweep(context.Background(), folds, preprocessing.Spec{},
		flakyFamily{failOn: -1}, grid, []metrics.Metric{metrics.MetricRMSE}, 2, nil)
	require.NoError(t, err)

	// 2 configs x 3 folds x 1 metric.
	assert.Equal(t, 6, table.Len())
	values := table.ValuesByConfig("rmse")
	assert.Len(t, values["penalty=0"], 3)
	assert.Len(t, values["penalty=1"], 3)
}

func TestSweepSkipsDivergedConfig(t *testing.T) {
	var warned []error
	errors.SetWarningHandler(func(w error) { warned = append(warned, w) })
	defer errors.SetWarningHandler(nil)

	folds := testFolds(t)
	grid := GridFromValues("penalty", []float64{0, 1})

	table, err := Sweep(context.Background(), folds, preprocessing.Spec{},
		flakyFamily{failOn: 1}, grid, []metrics.Metric{metrics.MetricRMSE}, 2, nil)
	require.NoError(t, err)

	// The diverging config leaves no records; the healthy one is complete.
	values := table.ValuesByConfig("rmse")
	assert.Len(t, values["penalty=0"], 3)
	assert.Empty(t, values["penalty=1"])
	assert.Len(t, warned, 3)
}

func TestSweepEmptyGrid(t *testing.T) {
	folds := testFolds(t)

	_, err := Sweep(context.Background(), folds, preprocessing.Spec{},
		flakyFamily{}, nil, []metrics.Metric{metrics.MetricRMSE}, 1, nil)
	assert.ErrorIs(t, err, errors.ErrEmptyGrid)
}

func TestSweepPreprocessingPerFold(t *testing.T) {
	folds := testFolds(t)
	grid := GridFromValues("penalty", []float64{0})
	spec := preprocessing.Spec{Steps: []preprocessing.Step{
		{Kind: preprocessing.StepStandardize, Fields: []string{"x"}},
	}}

	table, err := Sweep(context.Background(), folds, spec,
		flakyFamily{failOn: -1}, grid, []metrics.Metric{metrics.MetricMAE}, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, table.Len())
}
