package similarity

import (
	"errors"

	"github.com/katalvlaran/eventcluster/dtw"
)

var (
	// ErrInvalidInput indicates a nil or empty event collection or a bad option value.
	ErrInvalidInput = errors.New("similarity: invalid input")

	// ErrMissingTrace indicates an event without trace data.
	ErrMissingTrace = errors.New("similarity: event has no trace")

	// ErrUnknownType indicates an unsupported correlation type name.
	ErrUnknownType = errors.New("similarity: unknown correlation type")

	// ErrUnknownMethod indicates an unsupported distance-to-similarity method.
	ErrUnknownMethod = errors.New("similarity: unknown method")

	// ErrUnknownDissimilarity indicates an unsupported local dissimilarity.
	ErrUnknownDissimilarity = dtw.ErrUnknownDissimilarity

	// ErrConstraintConflict indicates contradictory path constraints.
	ErrConstraintConflict = errors.New("similarity: conflicting path constraints")

	// ErrNotImplemented is returned for option combinations without an implementation.
	ErrNotImplemented = errors.New("similarity: not implemented")
)
