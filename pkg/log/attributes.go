// Package log defines standard attribute keys for model-selection runs.
//
// Using these keys consistently across packages keeps the structured output
// of a tuning run (split, fold sweep, selection, final fit) filterable by
// the same field names everywhere.

package log

// Run and operation context.
const (
	// RunIDKey identifies one end-to-end tuning run (a UUID).
	RunIDKey = "run.id"

	// ModelNameKey identifies the model family in use.
	// Examples: "ols", "elastic_net"
	ModelNameKey = "model.name"

	// OperationKey names the operation being performed.
	// Standard values: "split", "fold", "fit", "predict", "evaluate",
	// "select", "finalize"
	OperationKey = "ml.operation"

	// ComponentKey identifies the package performing the operation.
	// Examples: "resample", "preprocessing", "tune", "linear"
	ComponentKey = "ml.component"

	// PhaseKey marks the lifecycle phase: "tuning", "selection", "final".
	PhaseKey = "ml.phase"
)

// Sweep context. One (fold, config) pair of the cross-validation sweep is
// identified by FoldKey plus ConfigKey.
const (
	// FoldKey is the zero-based index of the cross-validation fold.
	FoldKey = "cv.fold"

	// FoldsKey is the total number of folds (k).
	FoldsKey = "cv.folds"

	// ConfigKey is the canonical string form of a hyperparameter config.
	ConfigKey = "cv.config"

	// GridSizeKey is the number of configs in the sweep grid.
	GridSizeKey = "cv.grid_size"

	// MetricKey names the metric a value belongs to.
	MetricKey = "cv.metric"

	// MetricValueKey is the numeric metric value.
	MetricValueKey = "cv.value"
)

// Data shape.
const (
	// SamplesKey is the number of records in the dataset being processed.
	SamplesKey = "data.samples"

	// FeaturesKey is the number of feature columns.
	FeaturesKey = "data.features"

	// TrainSamplesKey and TestSamplesKey describe a train/test split.
	TrainSamplesKey = "data.train_samples"
	TestSamplesKey  = "data.test_samples"
)

// Performance and reproducibility.
const (
	// DurationMsKey is the wall-clock duration of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// IterationKey is the current iteration of an iterative solver.
	IterationKey = "training.iteration"

	// SeedKey is the random seed fixing a run's partitions.
	SeedKey = "config.seed"
)

// Error context.
const (
	// ErrorCodeKey carries a structured error code.
	// Examples: "NOT_FITTED", "SCHEMA_MISMATCH", "CONVERGENCE_FAILURE"
	ErrorCodeKey = "error.code"

	// ErrorTypeKey categorizes the error type name.
	ErrorTypeKey = "error.type"
)

// Standard operation values.
const (
	OperationSplit    = "split"
	OperationFold     = "fold"
	OperationFit      = "fit"
	OperationPredict  = "predict"
	OperationEvaluate = "evaluate"
	OperationSelect   = "select"
	OperationFinalize = "finalize"

	PhaseTuning    = "tuning"
	PhaseSelection = "selection"
	PhaseFinal     = "final"

	ErrorNotFitted      = "NOT_FITTED"
	ErrorSchemaMismatch = "SCHEMA_MISMATCH"
	ErrorEmptyData      = "EMPTY_DATA"
	ErrorInvalidInput   = "INVALID_INPUT"
	ErrorConvergence    = "CONVERGENCE_FAILURE"
	ErrorSingularMatrix = "SINGULAR_MATRIX"
)
