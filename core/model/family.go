package model

import "gonum.org/v1/gonum/mat"

// Family is the capability contract a model family exposes to the tuning
// layer: given features, a target and a hyperparameter assignment it
// produces a fitted, immutable Predictor. Implementations must not mutate
// the inputs and must not keep state between Fit calls.
//
// A family distinguishes its variants by the hyperparameters it reads from
// params; unknown keys are ignored. An ordinary least squares family reads
// nothing, a penalized family reads its regularization strength and mixing
// parameter.
type Family interface {
	// Name identifies the family, e.g. "ols" or "elastic_net".
	Name() string

	// Fit trains one model. A bounded-iteration solver that fails to
	// converge returns a ConvergenceError from pkg/errors.
	Fit(X, y mat.Matrix, params map[string]float64) (Predictor, error)
}
