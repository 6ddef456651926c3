package model

import (
	"encoding/gob"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// SaveModel は学習済みモデルをgob形式でファイルに保存する
//
// 使用例:
//
//	final, _ := tune.Finalize(...)
//	err := model.SaveModel(final.Model, "model.gob")
func SaveModel(model interface{}, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	return SaveModelToWriter(model, file)
}

// LoadModel はgob形式のファイルからモデルを読み込む
func LoadModel(model interface{}, filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return LoadModelFromReader(model, file)
}

// SaveModelToWriter はモデルをio.Writerにgob形式で書き出す
func SaveModelToWriter(model interface{}, w io.Writer) error {
	if err := gob.NewEncoder(w).Encode(model); err != nil {
		return fmt.Errorf("failed to encode model: %w", err)
	}
	return nil
}

// LoadModelFromReader はio.Readerからgob形式のモデルを読み込む
func LoadModelFromReader(model interface{}, r io.Reader) error {
	if err := gob.NewDecoder(r).Decode(model); err != nil {
		return fmt.Errorf("failed to decode model: %w", err)
	}
	return nil
}

// Artifact は学習済み線形モデルの持ち運び可能なJSON表現。
// 他言語ツールとの受け渡しや監査のためのプレーンな形式で、
// 振る舞いは持たない。
type Artifact struct {
	// ModelType はモデルの種類（"ols"、"elastic_net"等）
	ModelType string `json:"model_type"`

	// FormatVersion はフォーマットの互換性チェック用バージョン
	FormatVersion string `json:"format_version"`

	// Coefficients は特徴量ごとの係数
	Coefficients []float64 `json:"coefficients"`

	// Intercept は切片
	Intercept float64 `json:"intercept"`

	// Features は特徴量名（任意）
	Features []string `json:"features,omitempty"`

	// Hyperparameters は学習時のハイパーパラメータ
	Hyperparameters map[string]float64 `json:"hyperparameters,omitempty"`
}

// ArtifactFormatVersion は現在のArtifactフォーマットのバージョン
const ArtifactFormatVersion = "1.0"

// Validate はArtifactの必須フィールドを検証する
func (a *Artifact) Validate() error {
	if a.ModelType == "" {
		return fmt.Errorf("model_type is required")
	}
	if a.FormatVersion == "" {
		return fmt.Errorf("format_version is required")
	}
	if len(a.Coefficients) == 0 {
		return fmt.Errorf("coefficients are required")
	}
	return nil
}

// WriteArtifact はArtifactをインデント付きJSONとして書き出す
func WriteArtifact(a *Artifact, w io.Writer) error {
	if err := a.Validate(); err != nil {
		return err
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(a); err != nil {
		return fmt.Errorf("failed to encode artifact: %w", err)
	}
	return nil
}

// ReadArtifact はJSONからArtifactを読み込み、検証して返す
func ReadArtifact(r io.Reader) (*Artifact, error) {
	var a Artifact
	if err := json.NewDecoder(r).Decode(&a); err != nil {
		return nil, fmt.Errorf("failed to decode artifact: %w", err)
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return &a, nil
}
