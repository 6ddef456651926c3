package linear

import (
	"bytes"
	"encoding/gob"
	"math"

	"github.com/knsamati/modeltune/core/model"
	"github.com/knsamati/modeltune/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// ElasticNet is a penalized linear regression fit by coordinate descent.
//
// The objective is
//
//	(1/2n)·||y - Xw||² + penalty·mixture·||w||₁ + penalty·(1-mixture)/2·||w||²
//
// so mixture 1 is the lasso (pure L1), mixture 0 is ridge, and penalty 0
// recovers ordinary least squares. The solver cycles coordinates with a
// soft-threshold update until the largest coefficient change drops below
// tol; exceeding maxIter without converging is a ConvergenceError.
type ElasticNet struct {
	state *model.StateManager

	penalty      float64
	mixture      float64
	maxIter      int
	tol          float64
	fitIntercept bool

	// Fitted parameters, public for gob encoding.
	Coef      []float64
	Intercept float64
	NIter     int
}

// ElasticNetOption configures an ElasticNet.
type ElasticNetOption func(*ElasticNet)

// WithPenalty sets the overall regularization strength.
func WithPenalty(penalty float64) ElasticNetOption {
	return func(en *ElasticNet) {
		en.penalty = penalty
	}
}

// WithMixture sets the L1 fraction of the penalty, in [0, 1].
func WithMixture(mixture float64) ElasticNetOption {
	return func(en *ElasticNet) {
		en.mixture = mixture
	}
}

// WithENMaxIter bounds the coordinate-descent sweeps.
func WithENMaxIter(maxIter int) ElasticNetOption {
	return func(en *ElasticNet) {
		en.maxIter = maxIter
	}
}

// WithENTol sets the convergence tolerance on coefficient change.
func WithENTol(tol float64) ElasticNetOption {
	return func(en *ElasticNet) {
		en.tol = tol
	}
}

// WithENFitIntercept sets whether an intercept is learned.
func WithENFitIntercept(fit bool) ElasticNetOption {
	return func(en *ElasticNet) {
		en.fitIntercept = fit
	}
}

// NewElasticNet creates an ElasticNet with lasso mixture 1, tolerance 1e-6
// and a thousand-sweep iteration bound.
func NewElasticNet(opts ...ElasticNetOption) *ElasticNet {
	en := &ElasticNet{
		state:        model.NewStateManager(),
		mixture:      1.0,
		maxIter:      1000,
		tol:          1e-6,
		fitIntercept: true,
	}
	for _, opt := range opts {
		opt(en)
	}
	return en
}

// NewLasso creates a pure-L1 ElasticNet with the given penalty.
func NewLasso(penalty float64, opts ...ElasticNetOption) *ElasticNet {
	base := []ElasticNetOption{WithPenalty(penalty), WithMixture(1.0)}
	return NewElasticNet(append(base, opts...)...)
}

// Fit runs coordinate descent on X, y.
func (en *ElasticNet) Fit(X, y mat.Matrix) error {
	n, p := X.Dims()
	ry, cy := y.Dims()

	if n == 0 || p == 0 {
		return errors.NewModelError("ElasticNet.Fit", "empty data", errors.ErrEmptyData)
	}
	if ry != n {
		return errors.NewDimensionError("ElasticNet.Fit", n, ry, 0)
	}
	if cy != 1 {
		return errors.NewValueError("ElasticNet.Fit", "y must be a column vector")
	}
	if en.penalty < 0 {
		return errors.NewValidationError("penalty", "must be non-negative", en.penalty)
	}
	if en.mixture < 0 || en.mixture > 1 {
		return errors.NewValidationError("mixture", "must be in [0, 1]", en.mixture)
	}

	// Work on centered copies so the intercept drops out of the updates.
	xMeans := make([]float64, p)
	var yMean float64
	if en.fitIntercept {
		for j := 0; j < p; j++ {
			for i := 0; i < n; i++ {
				xMeans[j] += X.At(i, j)
			}
			xMeans[j] /= float64(n)
		}
		for i := 0; i < n; i++ {
			yMean += y.At(i, 0)
		}
		yMean /= float64(n)
	}

	xc := mat.NewDense(n, p, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			xc.Set(i, j, X.At(i, j)-xMeans[j])
		}
	}
	residual := make([]float64, n)
	for i := 0; i < n; i++ {
		residual[i] = y.At(i, 0) - yMean
	}

	// Per-coordinate curvature (1/n)·Σ x_ij².
	colNorm := make([]float64, p)
	for j := 0; j < p; j++ {
		for i := 0; i < n; i++ {
			v := xc.At(i, j)
			colNorm[j] += v * v
		}
		colNorm[j] /= float64(n)
	}

	l1 := en.penalty * en.mixture
	l2 := en.penalty * (1 - en.mixture)
	w := make([]float64, p)

	var lastDelta float64
	converged := false
	for iter := 0; iter < en.maxIter; iter++ {
		maxDelta := 0.0
		for j := 0; j < p; j++ {
			if colNorm[j] == 0 {
				continue
			}
			old := w[j]

			// rho is the coordinate-wise gradient with w_j removed.
			var rho float64
			for i := 0; i < n; i++ {
				rho += xc.At(i, j) * (residual[i] + xc.At(i, j)*old)
			}
			rho /= float64(n)

			updated := softThreshold(rho, l1) / (colNorm[j] + l2)
			if err := errors.CheckScalar("coordinate_update", updated, iter); err != nil {
				return err
			}

			if updated != old {
				delta := updated - old
				for i := 0; i < n; i++ {
					residual[i] -= xc.At(i, j) * delta
				}
				w[j] = updated
				if math.Abs(delta) > maxDelta {
					maxDelta = math.Abs(delta)
				}
			}
		}

		lastDelta = maxDelta
		if maxDelta < en.tol {
			en.NIter = iter + 1
			converged = true
			break
		}
	}
	if !converged {
		en.NIter = en.maxIter
		return errors.NewConvergenceError("elastic_net", en.maxIter, en.tol, lastDelta)
	}

	en.Coef = w
	en.Intercept = 0
	if en.fitIntercept {
		en.Intercept = yMean
		for j := 0; j < p; j++ {
			en.Intercept -= xMeans[j] * w[j]
		}
	}
	en.state.SetDimensions(p, n)
	en.state.SetFitted()
	return nil
}

// softThreshold is the proximal operator of the L1 penalty.
func softThreshold(z, gamma float64) float64 {
	switch {
	case z > gamma:
		return z - gamma
	case z < -gamma:
		return z + gamma
	default:
		return 0
	}
}

// Predict returns predictions for X.
func (en *ElasticNet) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !en.state.IsFitted() {
		return nil, errors.NewNotFittedError("ElasticNet", "Predict")
	}

	r, c := X.Dims()
	p, _ := en.state.GetDimensions()
	if c != p {
		return nil, errors.NewDimensionError("ElasticNet.Predict", p, c, 1)
	}

	predictions := mat.NewDense(r, 1, nil)
	for i := 0; i < r; i++ {
		pred := en.Intercept
		for j := 0; j < c; j++ {
			pred += X.At(i, j) * en.Coef[j]
		}
		predictions.Set(i, 0, pred)
	}
	return predictions, nil
}

// Score returns the coefficient of determination R² on X, y.
func (en *ElasticNet) Score(X, y mat.Matrix) (float64, error) {
	if !en.state.IsFitted() {
		return 0, errors.NewNotFittedError("ElasticNet", "Score")
	}

	yPred, err := en.Predict(X)
	if err != nil {
		return 0, err
	}

	r, _ := y.Dims()
	var yMean float64
	for i := 0; i < r; i++ {
		yMean += y.At(i, 0)
	}
	yMean /= float64(r)

	var tss, rss float64
	for i := 0; i < r; i++ {
		yTrue := y.At(i, 0)
		diff := yTrue - yPred.At(i, 0)
		tss += (yTrue - yMean) * (yTrue - yMean)
		rss += diff * diff
	}
	if tss == 0 {
		return 0, errors.Newf("total sum of squares is zero")
	}
	return 1 - rss/tss, nil
}

// Coefficients returns a copy of the fitted coefficients.
func (en *ElasticNet) Coefficients() []float64 {
	out := make([]float64, len(en.Coef))
	copy(out, en.Coef)
	return out
}

// elasticNetGob is the serialized form of an ElasticNet. Gob skips
// unexported fields, so the hyperparameters and fitted state are
// flattened into this exported payload.
type elasticNetGob struct {
	Penalty      float64
	Mixture      float64
	MaxIter      int
	Tol          float64
	FitIntercept bool

	Coef      []float64
	Intercept float64
	NIter     int

	Fitted    bool
	NFeatures int
	NSamples  int
}

// GobEncode implements gob.GobEncoder.
func (en *ElasticNet) GobEncode() ([]byte, error) {
	nFeatures, nSamples := en.state.GetDimensions()
	payload := elasticNetGob{
		Penalty:      en.penalty,
		Mixture:      en.mixture,
		MaxIter:      en.maxIter,
		Tol:          en.tol,
		FitIntercept: en.fitIntercept,
		Coef:         en.Coef,
		Intercept:    en.Intercept,
		NIter:        en.NIter,
		Fitted:       en.state.IsFitted(),
		NFeatures:    nFeatures,
		NSamples:     nSamples,
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&payload); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder. A decoded model is immediately
// usable for prediction when the encoded one was fitted.
func (en *ElasticNet) GobDecode(data []byte) error {
	var payload elasticNetGob
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&payload); err != nil {
		return err
	}
	en.penalty = payload.Penalty
	en.mixture = payload.Mixture
	en.maxIter = payload.MaxIter
	en.tol = payload.Tol
	en.fitIntercept = payload.FitIntercept
	en.Coef = payload.Coef
	en.Intercept = payload.Intercept
	en.NIter = payload.NIter

	en.state = model.NewStateManager()
	if payload.Fitted {
		en.state.SetDimensions(payload.NFeatures, payload.NSamples)
		en.state.SetFitted()
	}
	return nil
}

// GetParams returns the hyperparameters in effect.
func (en *ElasticNet) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"penalty":       en.penalty,
		"mixture":       en.mixture,
		"max_iter":      en.maxIter,
		"tol":           en.tol,
		"fit_intercept": en.fitIntercept,
	}
}
