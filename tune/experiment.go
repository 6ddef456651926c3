package tune

import (
	"context"
	"os"
	"runtime"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/knsamati/modeltune/core/model"
	"github.com/knsamati/modeltune/dataset"
	"github.com/knsamati/modeltune/linear"
	"github.com/knsamati/modeltune/metrics"
	"github.com/knsamati/modeltune/pkg/errors"
	"github.com/knsamati/modeltune/pkg/log"
	"github.com/knsamati/modeltune/preprocessing"
	"github.com/knsamati/modeltune/resample"
)

// Experiment describes one complete tuning run: how to partition the
// data, what to preprocess, which model family to sweep over which grid,
// and how to judge the results. Zero values fall back to sensible
// defaults in Run.
type Experiment struct {
	Preprocess      preprocessing.Spec
	Family          model.Family
	Grid            Grid
	Metrics         []metrics.Metric
	SelectionMetric string
	Strategy        Strategy
	Folds           int
	TrainFraction   float64
	Seed            uint64
	Workers         int
	StratifyField   string
	Logger          log.Logger
}

// RunResult carries everything a tuning run produced.
type RunResult struct {
	RunID     string
	Split     *resample.Split
	Folds     *resample.FoldSet
	Table     *RecordTable
	Selection *SelectionResult
	Final     *FinalFit
	Elapsed   time.Duration
}

// Run executes the experiment end to end: split, fold, sweep, select,
// finalize. The same dataset, experiment and seed always produce
// bit-identical results regardless of worker count.
func (e *Experiment) Run(ctx context.Context, ds *dataset.Dataset) (*RunResult, error) {
	start := time.Now()

	folds := e.Folds
	if folds == 0 {
		folds = 5
	}
	fraction := e.TrainFraction
	if fraction == 0 {
		fraction = 0.75
	}
	workers := e.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	strategy := e.Strategy
	if strategy == "" {
		strategy = StrategyBestMean
	}
	logger := e.Logger
	if logger == nil {
		logger = log.GetLoggerWithName("tune")
	}

	if e.Family == nil {
		return nil, errors.NewValueError("tune.Run", "no model family configured")
	}
	if len(e.Metrics) == 0 {
		return nil, errors.NewValueError("tune.Run", "no metrics configured")
	}

	selMetric, err := e.selectionMetric()
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	logger = logger.With(log.RunIDKey, runID)
	logger.Info("tuning run started",
		log.SamplesKey, ds.Len(),
		log.FoldsKey, folds,
		log.GridSizeKey, len(e.Grid),
		log.SeedKey, e.Seed)

	split, err := resample.TrainTestSplit(ds, fraction, e.Seed)
	if err != nil {
		return nil, errors.Wrap(err, "tune.Run: split")
	}

	var foldSet *resample.FoldSet
	if e.StratifyField != "" {
		foldSet, err = resample.StratifiedKFold(split.Train, e.StratifyField, folds, e.Seed)
	} else {
		foldSet, err = resample.KFold(split.Train, folds, e.Seed)
	}
	if err != nil {
		return nil, errors.Wrap(err, "tune.Run: folds")
	}

	table, err := Sweep(ctx, foldSet, e.Preprocess, e.Family, e.Grid, e.Metrics, workers, logger)
	if err != nil {
		return nil, errors.Wrap(err, "tune.Run: sweep")
	}

	selection, err := SelectBest(table, e.Grid, selMetric, strategy, folds)
	if err != nil {
		return nil, errors.Wrap(err, "tune.Run: selection")
	}
	logger.Info("config selected",
		log.ConfigKey, selection.Best.Key(),
		log.MetricKey, selMetric.Name,
		log.MetricValueKey, selection.BestSummary().Mean)

	final, err := Finalize(split, e.Preprocess, e.Family, selection.Best, e.Metrics)
	if err != nil {
		return nil, errors.Wrap(err, "tune.Run: finalize")
	}

	elapsed := time.Since(start)
	logger.Info("tuning run finished", log.DurationMsKey, elapsed.Milliseconds())

	return &RunResult{
		RunID:     runID,
		Split:     split,
		Folds:     foldSet,
		Table:     table,
		Selection: selection,
		Final:     final,
		Elapsed:   elapsed,
	}, nil
}

// selectionMetric resolves the metric the selector optimizes. It defaults
// to the first configured metric.
func (e *Experiment) selectionMetric() (metrics.Metric, error) {
	if e.SelectionMetric == "" {
		return e.Metrics[0], nil
	}
	for _, m := range e.Metrics {
		if m.Name == e.SelectionMetric {
			return m, nil
		}
	}
	return metrics.Metric{}, errors.Wrapf(errors.ErrNoMetric,
		"tune.Run: selection metric %q is not among the configured metrics", e.SelectionMetric)
}

// ExperimentConfig is the YAML representation of an experiment, the way
// runs are described on disk for the CLI.
type ExperimentConfig struct {
	Data struct {
		Path   string `yaml:"path"`
		Target string `yaml:"target"`
	} `yaml:"data"`
	TrainFraction float64              `yaml:"train_fraction"`
	Folds         int                  `yaml:"folds"`
	Seed          uint64               `yaml:"seed"`
	Workers       int                  `yaml:"workers"`
	Stratify      string               `yaml:"stratify,omitempty"`
	Family        string               `yaml:"family"`
	Grid          map[string][]float64 `yaml:"grid"`
	Metrics       []string             `yaml:"metrics"`
	Selection     struct {
		Metric   string `yaml:"metric"`
		Strategy string `yaml:"strategy"`
	} `yaml:"selection"`
	Preprocess preprocessing.Spec `yaml:"preprocess"`
}

// LoadExperimentConfig reads and parses an experiment description from a
// YAML file.
func LoadExperimentConfig(path string) (*ExperimentConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read experiment config %s", path)
	}
	var cfg ExperimentConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrapf(err, "parse experiment config %s", path)
	}
	return &cfg, nil
}

// Build turns the on-disk description into a runnable Experiment,
// resolving the family and metric names.
func (c *ExperimentConfig) Build() (*Experiment, error) {
	family, ok := linear.FamilyByName(c.Family)
	if !ok {
		return nil, errors.NewValueError("experiment config", "unknown model family "+c.Family)
	}

	if len(c.Metrics) == 0 {
		return nil, errors.NewValueError("experiment config", "at least one metric is required")
	}
	ms := make([]metrics.Metric, 0, len(c.Metrics))
	for _, name := range c.Metrics {
		m, err := metrics.ByName(name)
		if err != nil {
			return nil, err
		}
		ms = append(ms, m)
	}

	return &Experiment{
		Preprocess:      c.Preprocess,
		Family:          family,
		Grid:            CartesianGrid(c.Grid),
		Metrics:         ms,
		SelectionMetric: c.Selection.Metric,
		Strategy:        Strategy(c.Selection.Strategy),
		Folds:           c.Folds,
		TrainFraction:   c.TrainFraction,
		Seed:            c.Seed,
		Workers:         c.Workers,
		StratifyField:   c.Stratify,
	}, nil
}
