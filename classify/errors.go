package classify

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrLengthMismatch indicates an embedding and a label vector (or index
	// list) of different lengths.
	ErrLengthMismatch = errors.New("classify: length mismatch")

	// ErrNaN indicates NaN values in an embedding.
	ErrNaN = errors.New("classify: embedding contains NaN")

	// ErrUnknownScoring indicates a scoring mode other than classification
	// or clustering.
	ErrUnknownScoring = errors.New("classify: unknown scoring")

	// ErrUnknownNormalization indicates an unsupported normalization step.
	ErrUnknownNormalization = errors.New("classify: unknown normalization")

	// ErrBalanceInfeasible indicates a set that cannot be balanced.
	ErrBalanceInfeasible = errors.New("classify: balancing not feasible")

	// ErrNoClassifier indicates that no family could construct a model.
	ErrNoClassifier = errors.New("classify: could not construct classifier, try another one")

	// ErrUnknownHyperparameter indicates a hyperparameter the model does not take.
	ErrUnknownHyperparameter = errors.New("classify: unknown hyperparameter")

	// ErrBadHyperparameter indicates a hyperparameter of the wrong type or range.
	ErrBadHyperparameter = errors.New("classify: bad hyperparameter")

	// ErrFileExists indicates a model file that would be overwritten.
	ErrFileExists = errors.New("classify: file exists")

	// ErrInvalidState indicates an operation called before its prerequisite.
	ErrInvalidState = errors.New("classify: invalid state")

	// ErrInvalidInput indicates empty or malformed data.
	ErrInvalidInput = errors.New("classify: invalid input")
)

// UnknownClassifierError reports a model name missing from every family.
type UnknownClassifierError struct {
	Name     string
	Families []string
}

func (e *UnknownClassifierError) Error() string {
	return fmt.Sprintf("classify: unknown classifier %q, choose one from the families [%s]",
		e.Name, strings.Join(e.Families, ", "))
}
