package modules

import "errors"

var (
	// ErrInvalidInput indicates missing events, a bad bounds pair or a
	// similarity matrix that does not match the events.
	ErrInvalidInput = errors.New("modules: invalid input")
)
