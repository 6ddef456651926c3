package tune

import (
	"gonum.org/v1/gonum/mat"

	"github.com/knsamati/modeltune/core/model"
	"github.com/knsamati/modeltune/dataset"
	"github.com/knsamati/modeltune/metrics"
	"github.com/knsamati/modeltune/pkg/errors"
	"github.com/knsamati/modeltune/preprocessing"
	"github.com/knsamati/modeltune/resample"
)

// FinalFit is the deliverable of a tuning run: the winning config refit
// on the entire training partition, with its one-shot evaluation on the
// held-out test set.
type FinalFit struct {
	Config      Config
	Recipe      *preprocessing.Recipe
	Model       model.Predictor
	TestMetrics map[string]float64
}

// Finalize refits the winning config on the full training partition and
// evaluates it exactly once on the test partition. This is the only point
// in a run where the test set is read; every earlier decision was made on
// cross-validation folds alone.
func Finalize(split *resample.Split, spec preprocessing.Spec, family model.Family,
	best Config, ms []metrics.Metric) (*FinalFit, error) {

	if split == nil || split.Train == nil || split.Test == nil {
		return nil, errors.NewValueError("tune.Finalize", "split is incomplete")
	}

	recipe, trainT, err := preprocessing.FitApply(split.Train, spec)
	if err != nil {
		return nil, errors.Wrap(err, "tune.Finalize: refit preprocessing")
	}

	X, err := trainT.FeatureMatrix()
	if err != nil {
		return nil, err
	}
	y, err := trainT.TargetVector()
	if err != nil {
		return nil, err
	}

	fitted, err := family.Fit(X, y, best)
	if err != nil {
		return nil, errors.Wrapf(err, "tune.Finalize: refit %s with %s", family.Name(), best.Key())
	}

	testMetrics, err := scoreOn(fitted, recipe, split.Test, ms)
	if err != nil {
		return nil, errors.Wrap(err, "tune.Finalize: test evaluation")
	}

	return &FinalFit{
		Config:      best.Clone(),
		Recipe:      recipe,
		Model:       fitted,
		TestMetrics: testMetrics,
	}, nil
}

// Predict runs a raw dataset through the fitted recipe and model,
// returning predictions on the original target scale.
func (f *FinalFit) Predict(ds *dataset.Dataset) (*mat.VecDense, error) {
	transformed, err := f.Recipe.Apply(ds)
	if err != nil {
		return nil, err
	}
	X, err := transformed.FeatureMatrix()
	if err != nil {
		return nil, err
	}
	raw, err := f.Model.Predict(X)
	if err != nil {
		return nil, err
	}
	n, _ := raw.Dims()
	out := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		out.SetVec(i, f.Recipe.InverseTarget(raw.At(i, 0)))
	}
	return out, nil
}
