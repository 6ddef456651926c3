package preprocessing

import (
	"math"

	"github.com/knsamati/modeltune/core/model"
	"github.com/knsamati/modeltune/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// StandardScaler はデータを平均0、標準偏差1に変換するスケーラー。
// Fitは訓練データからのみ統計量を学習し、Transformはそれを任意の
// データへ決定的に適用する。
type StandardScaler struct {
	model.BaseEstimator

	// Mean は各特徴量の平均値
	Mean []float64

	// Scale は各特徴量の標準偏差
	Scale []float64

	// NFeatures は特徴量の数
	NFeatures int

	// WithMean は平均を引くかどうか
	WithMean bool

	// WithStd は標準偏差で割るかどうか
	WithStd bool
}

// NewStandardScaler は新しいStandardScalerを作成する
func NewStandardScaler(withMean, withStd bool) *StandardScaler {
	return &StandardScaler{WithMean: withMean, WithStd: withStd}
}

// NewStandardScalerDefault はデフォルト設定（平均・標準偏差とも有効）で作成する
func NewStandardScalerDefault() *StandardScaler {
	return NewStandardScaler(true, true)
}

// Fit は訓練データから平均と標準偏差を計算する
func (s *StandardScaler) Fit(X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("StandardScaler.Fit", "empty data", errors.ErrEmptyData)
	}

	s.NFeatures = c
	s.Mean = make([]float64, c)
	s.Scale = make([]float64, c)

	for j := 0; j < c; j++ {
		if s.WithMean {
			sum := 0.0
			for i := 0; i < r; i++ {
				sum += X.At(i, j)
			}
			s.Mean[j] = sum / float64(r)
		}

		if s.WithStd {
			sumSquares := 0.0
			for i := 0; i < r; i++ {
				diff := X.At(i, j) - s.Mean[j]
				sumSquares += diff * diff
			}
			s.Scale[j] = math.Sqrt(sumSquares / float64(r))
			// 標準偏差がほぼ0の列はゼロ除算を避けるため1にする
			if math.Abs(s.Scale[j]) < 1e-8 {
				s.Scale[j] = 1.0
			}
		} else {
			s.Scale[j] = 1.0
		}
	}

	s.SetFitted()
	return nil
}

// Transform は学習済みの統計量でデータを標準化する
func (s *StandardScaler) Transform(X mat.Matrix) (mat.Matrix, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError("StandardScaler", "Transform")
	}
	r, c := X.Dims()
	if c != s.NFeatures {
		return nil, errors.NewDimensionError("StandardScaler.Transform", s.NFeatures, c, 1)
	}

	result := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			result.Set(i, j, (X.At(i, j)-s.Mean[j])/s.Scale[j])
		}
	}
	return result, nil
}

// FitTransform はFitとTransformを連続して実行する
func (s *StandardScaler) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// InverseTransform は標準化されたデータを元のスケールに戻す
func (s *StandardScaler) InverseTransform(X mat.Matrix) (mat.Matrix, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError("StandardScaler", "InverseTransform")
	}
	r, c := X.Dims()
	if c != s.NFeatures {
		return nil, errors.NewDimensionError("StandardScaler.InverseTransform", s.NFeatures, c, 1)
	}

	result := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			result.Set(i, j, X.At(i, j)*s.Scale[j]+s.Mean[j])
		}
	}
	return result, nil
}

// MinMaxScaler はデータを指定した範囲（デフォルト[0,1]）に変換するスケーラー
type MinMaxScaler struct {
	model.BaseEstimator

	// DataMin は各特徴量の最小値
	DataMin []float64

	// DataMax は各特徴量の最大値
	DataMax []float64

	// FeatureMin は変換後の最小値
	FeatureMin float64

	// FeatureMax は変換後の最大値
	FeatureMax float64

	// NFeatures は特徴量の数
	NFeatures int
}

// NewMinMaxScaler は変換範囲を指定してMinMaxScalerを作成する
func NewMinMaxScaler(featureMin, featureMax float64) *MinMaxScaler {
	return &MinMaxScaler{FeatureMin: featureMin, FeatureMax: featureMax}
}

// NewMinMaxScalerDefault は範囲[0,1]でMinMaxScalerを作成する
func NewMinMaxScalerDefault() *MinMaxScaler {
	return NewMinMaxScaler(0, 1)
}

// Fit は訓練データから各特徴量の最小値・最大値を学習する
func (s *MinMaxScaler) Fit(X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("MinMaxScaler.Fit", "empty data", errors.ErrEmptyData)
	}
	if s.FeatureMin >= s.FeatureMax {
		return errors.NewValueError("MinMaxScaler.Fit", "feature range min must be less than max")
	}

	s.NFeatures = c
	s.DataMin = make([]float64, c)
	s.DataMax = make([]float64, c)

	for j := 0; j < c; j++ {
		minVal, maxVal := X.At(0, j), X.At(0, j)
		for i := 1; i < r; i++ {
			v := X.At(i, j)
			if v < minVal {
				minVal = v
			}
			if v > maxVal {
				maxVal = v
			}
		}
		s.DataMin[j] = minVal
		s.DataMax[j] = maxVal
	}

	s.SetFitted()
	return nil
}

// Transform は学習済みの範囲でデータをスケーリングする
func (s *MinMaxScaler) Transform(X mat.Matrix) (mat.Matrix, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError("MinMaxScaler", "Transform")
	}
	r, c := X.Dims()
	if c != s.NFeatures {
		return nil, errors.NewDimensionError("MinMaxScaler.Transform", s.NFeatures, c, 1)
	}

	result := mat.NewDense(r, c, nil)
	span := s.FeatureMax - s.FeatureMin
	for j := 0; j < c; j++ {
		dataRange := s.DataMax[j] - s.DataMin[j]
		for i := 0; i < r; i++ {
			if dataRange == 0 {
				// 定数列は範囲の下端に写す
				result.Set(i, j, s.FeatureMin)
				continue
			}
			scaled := (X.At(i, j) - s.DataMin[j]) / dataRange
			result.Set(i, j, scaled*span+s.FeatureMin)
		}
	}
	return result, nil
}

// FitTransform はFitとTransformを連続して実行する
func (s *MinMaxScaler) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// InverseTransform はスケーリングされたデータを元のスケールに戻す
func (s *MinMaxScaler) InverseTransform(X mat.Matrix) (mat.Matrix, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError("MinMaxScaler", "InverseTransform")
	}
	r, c := X.Dims()
	if c != s.NFeatures {
		return nil, errors.NewDimensionError("MinMaxScaler.InverseTransform", s.NFeatures, c, 1)
	}

	result := mat.NewDense(r, c, nil)
	span := s.FeatureMax - s.FeatureMin
	for j := 0; j < c; j++ {
		dataRange := s.DataMax[j] - s.DataMin[j]
		for i := 0; i < r; i++ {
			normalized := (X.At(i, j) - s.FeatureMin) / span
			result.Set(i, j, normalized*dataRange+s.DataMin[j])
		}
	}
	return result, nil
}
