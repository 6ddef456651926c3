package linear

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/knsamati/modeltune/core/model"
)

func TestRegressionFitExactLine(t *testing.T) {
	// y = 2x + 1, exactly.
	X := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
	y := mat.NewDense(4, 1, []float64{3, 5, 7, 9})

	lr := NewRegression()
	require.NoError(t, lr.Fit(X, y))

	assert.InDelta(t, 2.0, lr.Weights.AtVec(0), 1e-9, "slope")
	assert.InDelta(t, 1.0, lr.Intercept, 1e-9, "intercept")

	pred, err := lr.Predict(mat.NewDense(2, 1, []float64{5, 6}))
	require.NoError(t, err)
	assert.InDelta(t, 11.0, pred.At(0, 0), 1e-9)
	assert.InDelta(t, 13.0, pred.At(1, 0), 1e-9)

	score, err := lr.Score(X, y)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, score, 1e-9)
}

func TestRegressionWithoutIntercept(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{1, 2, 3})
	y := mat.NewDense(3, 1, []float64{2, 4, 6})

	lr := NewRegression(WithFitIntercept(false))
	require.NoError(t, lr.Fit(X, y))

	assert.InDelta(t, 2.0, lr.Weights.AtVec(0), 1e-9)
	assert.Zero(t, lr.Intercept)
}

func TestRegressionValidation(t *testing.T) {
	lr := NewRegression()

	t.Run("empty data", func(t *testing.T) {
		err := lr.Fit(&mat.Dense{}, mat.NewDense(1, 1, nil))
		assert.Error(t, err)
	})

	t.Run("row mismatch", func(t *testing.T) {
		err := lr.Fit(mat.NewDense(3, 1, []float64{1, 2, 3}), mat.NewDense(2, 1, []float64{1, 2}))
		assert.Error(t, err)
	})

	t.Run("predict before fit", func(t *testing.T) {
		fresh := NewRegression()
		_, err := fresh.Predict(mat.NewDense(1, 1, []float64{1}))
		assert.Error(t, err)
	})
}

func TestRegressionMultiFeature(t *testing.T) {
	// y = 1 + 2a + 3b over a small grid.
	rows := 9
	X := mat.NewDense(rows, 2, nil)
	y := mat.NewDense(rows, 1, nil)
	idx := 0
	for a := 0.0; a < 3; a++ {
		for b := 0.0; b < 3; b++ {
			X.Set(idx, 0, a)
			X.Set(idx, 1, b)
			y.Set(idx, 0, 1+2*a+3*b)
			idx++
		}
	}

	lr := NewRegression()
	require.NoError(t, lr.Fit(X, y))
	assert.InDelta(t, 2.0, lr.Weights.AtVec(0), 1e-9)
	assert.InDelta(t, 3.0, lr.Weights.AtVec(1), 1e-9)
	assert.InDelta(t, 1.0, lr.Intercept, 1e-9)
}

func TestRegressionArtifactRoundTrip(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{1, 2, 3})
	y := mat.NewDense(3, 1, []float64{3, 5, 7})

	lr := NewRegression()
	require.NoError(t, lr.Fit(X, y))

	var buf bytes.Buffer
	require.NoError(t, lr.ExportArtifact(&buf))

	restored := NewRegression()
	require.NoError(t, restored.ImportArtifact(&buf))

	assert.Equal(t, lr.NFeatures, restored.NFeatures)
	assert.InDelta(t, lr.Intercept, restored.Intercept, 1e-12)

	pred, err := restored.Predict(mat.NewDense(1, 1, []float64{10}))
	require.NoError(t, err)
	assert.InDelta(t, 21.0, pred.At(0, 0), 1e-9)
}

func TestRegressionGobRoundTrip(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{1, 2, 3})
	y := mat.NewDense(3, 1, []float64{3, 5, 7})

	lr := NewRegression()
	require.NoError(t, lr.Fit(X, y))

	var buf bytes.Buffer
	require.NoError(t, model.SaveModelToWriter(lr, &buf))

	loaded := &Regression{}
	require.NoError(t, model.LoadModelFromReader(loaded, &buf))

	// 復元したモデルは再学習なしで予測できること
	assert.True(t, loaded.IsFitted())
	pred, err := loaded.Predict(mat.NewDense(1, 1, []float64{10}))
	require.NoError(t, err)
	assert.InDelta(t, 21.0, pred.At(0, 0), 1e-9)

	assert.Equal(t, lr.GetWeights(), loaded.GetWeights())
	assert.InDelta(t, lr.Intercept, loaded.Intercept, 1e-12)
}

func TestRegressionSingularMatrix(t *testing.T) {
	// Two identical columns make X^T X singular.
	X := mat.NewDense(3, 2, []float64{
		1, 1,
		2, 2,
		3, 3,
	})
	y := mat.NewDense(3, 1, []float64{1, 2, 3})

	lr := NewRegression()
	err := lr.Fit(X, y)
	require.Error(t, err)
	assert.False(t, math.IsNaN(lr.Intercept))
}
