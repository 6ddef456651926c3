package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knsamati/modeltune/tune"
)

func sampleReport() *Report {
	return &Report{
		RunID:    "run-123",
		Metric:   "rmse",
		Strategy: tune.StrategyBestMean,
		Best:     tune.Config{"penalty": 0.1},
		Summaries: []tune.ConfigSummary{
			{Config: tune.Config{"penalty": 0.1}, Mean: 0.20, Std: 0.02, StdErr: 0.009, Folds: 5},
			{Config: tune.Config{"penalty": 1}, Mean: 0.25, Std: 0.03, StdErr: 0.013, Folds: 5},
		},
		TestMetrics: map[string]float64{"rmse": 0.21, "mae": 0.17},
		Records: []tune.MetricRecord{
			{Fold: 0, ConfigKey: "penalty=0.1", Metric: "rmse", Value: 0.19},
		},
		ElapsedMs: 42,
	}
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sampleReport().WriteText(&buf))
	out := buf.String()

	assert.Contains(t, out, "run-123")
	assert.Contains(t, out, "penalty=0.1 *", "best config is marked")
	assert.Contains(t, out, "penalty=1")
	assert.Contains(t, out, "mae")

	// mae sorts before rmse in the test-metric block.
	assert.Less(t, strings.Index(out, "mae"), strings.LastIndex(out, "rmse"))
}

func TestWriteJSONRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sampleReport().WriteJSON(&buf))

	var decoded Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	assert.Equal(t, "run-123", decoded.RunID)
	assert.Equal(t, tune.Config{"penalty": 0.1}, decoded.Best)
	assert.Len(t, decoded.Summaries, 2)
	assert.Equal(t, 0.21, decoded.TestMetrics["rmse"])
	assert.Equal(t, int64(42), decoded.ElapsedMs)
}

func TestFromResultRequiresSelection(t *testing.T) {
	_, err := FromResult(nil)
	assert.Error(t, err)

	_, err = FromResult(&tune.RunResult{})
	assert.Error(t, err)
}

func TestValidationCurve(t *testing.T) {
	path := filepath.Join(t.TempDir(), "curve.png")
	require.NoError(t, sampleReport().ValidationCurve("penalty", path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestValidationCurveUnknownParam(t *testing.T) {
	path := filepath.Join(t.TempDir(), "curve.png")
	err := sampleReport().ValidationCurve("mixture", path)
	assert.Error(t, err)
	assert.NoFileExists(t, path)
}
