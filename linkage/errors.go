package linkage

import "errors"

var (
	// ErrUnknownMethod indicates an unsupported linkage method.
	ErrUnknownMethod = errors.New("linkage: unknown method")

	// ErrUnknownMetric indicates an unsupported metric.
	ErrUnknownMetric = errors.New("linkage: unknown metric")

	// ErrUnknownCriterion indicates an unsupported cut criterion.
	ErrUnknownCriterion = errors.New("linkage: unknown criterion")

	// ErrInvalidInput indicates empty input, non-finite distances or
	// option values that do not fit the linkage.
	ErrInvalidInput = errors.New("linkage: invalid input")
)
