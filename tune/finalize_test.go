package tune

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knsamati/modeltune/dataset"
	"github.com/knsamati/modeltune/linear"
	"github.com/knsamati/modeltune/metrics"
	"github.com/knsamati/modeltune/preprocessing"
	"github.com/knsamati/modeltune/resample"
)

func TestFinalizeStandardizedTargetScoresOnOriginalScale(t *testing.T) {
	// Exactly linear data far from the origin: y = 1000 + 2x. If test
	// predictions stayed on the standardized scale the error metrics would
	// be off by the target mean; on the original scale they must be ~0.
	n := 20
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i := 0; i < n; i++ {
		xs[i] = float64(i)
		ys[i] = 1000 + 2*xs[i]
	}
	ds, err := dataset.New("y",
		dataset.Column{Name: "x", Kind: dataset.Numeric, Floats: xs},
		dataset.Column{Name: "y", Kind: dataset.Numeric, Floats: ys},
	)
	require.NoError(t, err)

	split, err := resample.TrainTestSplit(ds, 0.75, 42)
	require.NoError(t, err)

	spec := preprocessing.Spec{Steps: []preprocessing.Step{
		{Kind: preprocessing.StepStandardize, Fields: []string{"y"}},
	}}

	final, err := Finalize(split, spec, linear.OLSFamily{}, Config{}, []metrics.Metric{metrics.MetricRMSE, metrics.MetricMAE})
	require.NoError(t, err)

	assert.InDelta(t, 0.0, final.TestMetrics["rmse"], 1e-6)
	assert.InDelta(t, 0.0, final.TestMetrics["mae"], 1e-6)
}

func TestFinalizeIncompleteSplit(t *testing.T) {
	_, err := Finalize(nil, preprocessing.Spec{}, linear.OLSFamily{}, Config{}, []metrics.Metric{metrics.MetricRMSE})
	assert.Error(t, err)
}

func TestFinalFitPredictOriginalScale(t *testing.T) {
	ds := linearDataset(t, 20)
	split, err := resample.TrainTestSplit(ds, 0.75, 42)
	require.NoError(t, err)

	final, err := Finalize(split, preprocessing.Spec{}, linear.OLSFamily{}, Config{}, []metrics.Metric{metrics.MetricRMSE})
	require.NoError(t, err)

	preds, err := final.Predict(split.Test)
	require.NoError(t, err)
	require.Equal(t, split.Test.Len(), preds.Len())

	yTrue, err := split.Test.TargetVector()
	require.NoError(t, err)
	for i := 0; i < preds.Len(); i++ {
		assert.InDelta(t, yTrue.AtVec(i), preds.AtVec(i), 0.5)
	}
}
