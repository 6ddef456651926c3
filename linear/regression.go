package linear

import (
	"bytes"
	"encoding/gob"
	"io"

	"github.com/knsamati/modeltune/core/model"
	"github.com/knsamati/modeltune/core/parallel"
	"github.com/knsamati/modeltune/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Regression は正規方程式による最小二乗の線形回帰モデル
type Regression struct {
	model.BaseEstimator
	Weights   *mat.VecDense // 重み（係数）
	Intercept float64       // 切片
	NFeatures int           // 特徴量の数

	fitIntercept bool
}

// Option はRegressionの設定オプション
type Option func(*Regression)

// WithFitIntercept は切片を学習するかどうかを設定する
func WithFitIntercept(fit bool) Option {
	return func(lr *Regression) {
		lr.fitIntercept = fit
	}
}

// NewRegression は新しい線形回帰モデルを作成する
func NewRegression(opts ...Option) *Regression {
	lr := &Regression{fitIntercept: true}
	for _, opt := range opts {
		opt(lr)
	}
	return lr
}

// Fit はモデルを訓練データで学習させる。
// 正規方程式 w = (X^T * X)^(-1) * X^T * y を解く。
func (lr *Regression) Fit(X, y mat.Matrix) error {
	r, c := X.Dims()
	ry, cy := y.Dims()

	if r == 0 || c == 0 {
		return errors.NewModelError("Regression.Fit", "empty data", errors.ErrEmptyData)
	}
	if ry != r {
		return errors.NewDimensionError("Regression.Fit", r, ry, 0)
	}
	if cy != 1 {
		return errors.NewValueError("Regression.Fit", "y must be a column vector")
	}

	lr.NFeatures = c

	// 切片を学習する場合はXの先頭に1の列を足す
	nCols := c
	offset := 0
	if lr.fitIntercept {
		nCols = c + 1
		offset = 1
	}
	design := mat.NewDense(r, nCols, nil)

	// 行数が多い場合のみ並列化する
	const parallelThreshold = 1000
	parallel.ParallelizeWithThreshold(r, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			if lr.fitIntercept {
				design.Set(i, 0, 1.0)
			}
			for j := 0; j < c; j++ {
				design.Set(i, j+offset, X.At(i, j))
			}
		}
	})

	var XT mat.Dense
	XT.CloneFrom(design.T())

	var XTX mat.Dense
	XTX.Mul(&XT, design)

	var XTXInv mat.Dense
	if err := XTXInv.Inverse(&XTX); err != nil {
		return errors.NewModelError("Regression.Fit", "singular matrix", errors.ErrSingularMatrix)
	}

	yVec := mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		yVec.SetVec(i, y.At(i, 0))
	}

	var XTy mat.VecDense
	XTy.MulVec(&XT, yVec)

	solution := mat.NewVecDense(nCols, nil)
	solution.MulVec(&XTXInv, &XTy)

	if lr.fitIntercept {
		lr.Intercept = solution.AtVec(0)
	} else {
		lr.Intercept = 0
	}
	lr.Weights = mat.NewVecDense(c, nil)
	for i := 0; i < c; i++ {
		lr.Weights.SetVec(i, solution.AtVec(i+offset))
	}

	lr.SetFitted()
	return nil
}

// Predict は入力データに対する予測を返す
func (lr *Regression) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !lr.IsFitted() {
		return nil, errors.NewNotFittedError("Regression", "Predict")
	}

	r, c := X.Dims()
	if c != lr.NFeatures {
		return nil, errors.NewDimensionError("Regression.Predict", lr.NFeatures, c, 1)
	}

	predictions := mat.NewDense(r, 1, nil)
	for i := 0; i < r; i++ {
		pred := lr.Intercept
		for j := 0; j < c; j++ {
			pred += X.At(i, j) * lr.Weights.AtVec(j)
		}
		predictions.Set(i, 0, pred)
	}
	return predictions, nil
}

// GetWeights は学習された重みのコピーを返す
func (lr *Regression) GetWeights() []float64 {
	if lr.Weights == nil {
		return nil
	}
	weights := make([]float64, lr.Weights.Len())
	for i := 0; i < lr.Weights.Len(); i++ {
		weights[i] = lr.Weights.AtVec(i)
	}
	return weights
}

// GetIntercept は学習された切片を返す
func (lr *Regression) GetIntercept() float64 {
	if !lr.IsFitted() {
		return 0
	}
	return lr.Intercept
}

// Score はモデルの決定係数（R²）を計算する
func (lr *Regression) Score(X, y mat.Matrix) (float64, error) {
	if !lr.IsFitted() {
		return 0, errors.NewNotFittedError("Regression", "Score")
	}

	yPred, err := lr.Predict(X)
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
		yPredVal := yPred.At(i, 0)
		tss += (yTrue - yMean) * (yTrue - yMean)
		rss += (yTrue - yPredVal) * (yTrue - yPredVal)
	}
	if tss == 0 {
		return 0, errors.Newf("total sum of squares is zero")
	}
	return 1 - rss/tss, nil
}

// regressionGob はRegressionのgob表現。gobは非公開フィールドを
// 無視するため、学習済みフラグを含む全状態を公開ペイロードに写す。
type regressionGob struct {
	Weights      []float64
	Intercept    float64
	NFeatures    int
	FitIntercept bool
	Fitted       bool
}

// GobEncode はgob.GobEncoderを実装する
func (lr *Regression) GobEncode() ([]byte, error) {
	payload := regressionGob{
		Weights:      lr.GetWeights(),
		Intercept:    lr.Intercept,
		NFeatures:    lr.NFeatures,
		FitIntercept: lr.fitIntercept,
		Fitted:       lr.IsFitted(),
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&payload); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode はgob.GobDecoderを実装する。学習済みモデルを復元した
// 場合はそのままPredictに使える状態になる。
func (lr *Regression) GobDecode(data []byte) error {
	var payload regressionGob
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&payload); err != nil {
		return err
	}
	lr.Intercept = payload.Intercept
	lr.NFeatures = payload.NFeatures
	lr.fitIntercept = payload.FitIntercept
	lr.Weights = nil
	if len(payload.Weights) > 0 {
		lr.Weights = mat.NewVecDense(len(payload.Weights), payload.Weights)
	}
	lr.Reset()
	if payload.Fitted {
		lr.SetFitted()
	}
	return nil
}

// ExportArtifact はモデルをJSONアーティファクトとして書き出す
func (lr *Regression) ExportArtifact(w io.Writer) error {
	if !lr.IsFitted() {
		return errors.NewNotFittedError("Regression", "ExportArtifact")
	}
	return model.WriteArtifact(&model.Artifact{
		ModelType:     "ols",
		FormatVersion: model.ArtifactFormatVersion,
		Coefficients:  lr.GetWeights(),
		Intercept:     lr.Intercept,
	}, w)
}

// ImportArtifact はJSONアーティファクトからモデルを復元する
func (lr *Regression) ImportArtifact(r io.Reader) error {
	artifact, err := model.ReadArtifact(r)
	if err != nil {
		return err
	}
	if artifact.ModelType != "ols" {
		return errors.NewValueError("Regression.ImportArtifact",
			"artifact model_type is "+artifact.ModelType+", want ols")
	}

	lr.NFeatures = len(artifact.Coefficients)
	lr.Intercept = artifact.Intercept
	lr.Weights = mat.NewVecDense(len(artifact.Coefficients), artifact.Coefficients)
	lr.SetFitted()
	return nil
}
