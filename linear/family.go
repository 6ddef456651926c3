package linear

import (
	"github.com/knsamati/modeltune/core/model"
	"gonum.org/v1/gonum/mat"
)

// OLSFamily exposes ordinary least squares as a model.Family. It reads no
// hyperparameters.
type OLSFamily struct{}

// Name implements model.Family.
func (OLSFamily) Name() string { return "ols" }

// Fit implements model.Family.
func (OLSFamily) Fit(X, y mat.Matrix, _ map[string]float64) (model.Predictor, error) {
	lr := NewRegression()
	if err := lr.Fit(X, y); err != nil {
		return nil, err
	}
	return lr, nil
}

// ElasticNetFamily exposes penalized regression as a model.Family. It reads
// "penalty" (regularization strength, default 0) and "mixture" (L1 fraction,
// default 1, i.e. lasso) from the hyperparameter assignment. A penalty of
// zero makes the fit equivalent to least squares.
type ElasticNetFamily struct {
	// MaxIter and Tol bound the coordinate-descent solver; zero values
	// fall back to the ElasticNet defaults.
	MaxIter int
	Tol     float64
}

// Name implements model.Family.
func (ElasticNetFamily) Name() string { return "elastic_net" }

// Fit implements model.Family.
func (f ElasticNetFamily) Fit(X, y mat.Matrix, params map[string]float64) (model.Predictor, error) {
	opts := []ElasticNetOption{
		WithPenalty(params["penalty"]),
	}
	if mixture, ok := params["mixture"]; ok {
		opts = append(opts, WithMixture(mixture))
	}
	if f.MaxIter > 0 {
		opts = append(opts, WithENMaxIter(f.MaxIter))
	}
	if f.Tol > 0 {
		opts = append(opts, WithENTol(f.Tol))
	}

	en := NewElasticNet(opts...)
	if err := en.Fit(X, y); err != nil {
		return nil, err
	}
	return en, nil
}

// FamilyByName resolves a family from its configuration name.
func FamilyByName(name string) (model.Family, bool) {
	switch name {
	case "ols":
		return OLSFamily{}, true
	case "elastic_net", "lasso":
		return ElasticNetFamily{}, true
	default:
		return nil, false
	}
}
