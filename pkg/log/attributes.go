// Package log defines standard attribute keys for mixture fitting operations.
//
// Using these keys keeps log lines from the optimizer, the estimator wrapper
// and the command line tool consistent and filterable.
//
// The attributes are organized into categories:
//   - Model and Operation Context
//   - Data Shape
//   - Training Progress
//   - Error Context
//
// These keys follow a hierarchical naming convention (e.g., "model.name",
// "data.samples") to enable structured log analysis and filtering.

package log

// Model and Operation Context
const (
	// ModelNameKey identifies the type of model.
	// Examples: "GaussianMixture"
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "predict", "score", "select", "maximize"
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is performing the operation.
	// Examples: "mixture.optimizer", "cli"
	ComponentKey = "ml.component"
)

// Data Shape
const (
	// SamplesKey indicates the number of samples in the dataset.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of features (columns) in the dataset.
	FeaturesKey = "data.features"

	// SourceKey names where samples were read from.
	SourceKey = "data.source"
)

// Training Progress
const (
	// IterationKey records the current EM iteration number.
	IterationKey = "training.iteration"

	// MaxIterationsKey records the configured iteration cap.
	MaxIterationsKey = "training.max_iterations"

	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// ComponentsKey records the number of mixture components.
	ComponentsKey = "mixture.components"

	// LogLikelihoodKey records the mixture log-likelihood.
	LogLikelihoodKey = "mixture.log_likelihood"

	// ImprovementKey records the log-likelihood gain of one EM step.
	ImprovementKey = "mixture.improvement"

	// BICKey records the Bayesian Information Criterion of a model.
	BICKey = "mixture.bic"

	// DeltaKey records the convergence threshold derived from the delta ratio.
	DeltaKey = "mixture.delta"

	// RandomSeedKey records the random seed for reproducibility.
	RandomSeedKey = "config.random_seed"
)

// Error and Warning Context
const (
	// ErrorCodeKey provides a structured error code for programmatic handling.
	ErrorCodeKey = "error.code"

	// ErrorTypeKey categorizes the type of error encountered.
	ErrorTypeKey = "error.type"

	// ErrorDetailKey holds the structured fields of an exmax error.
	ErrorDetailKey = "error.detail"

	// SuggestionKey provides helpful suggestions for resolving issues.
	SuggestionKey = "error.suggestion"
)

// Standard attribute values.
const (
	OperationFit      = "fit"
	OperationPredict  = "predict"
	OperationScore    = "score"
	OperationMaximize = "maximize"
	OperationSelect   = "select"
	OperationBatch    = "batch"

	ErrorNotFitted    = "NOT_FITTED"
	ErrorInvalidInput = "INVALID_INPUT"
	ErrorConvergence  = "CONVERGENCE_FAILURE"
	ErrorNumerical    = "NUMERICAL_INSTABILITY"
)
