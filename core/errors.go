package core

import "errors"

var (
	// ErrInvalidSample rejects mutation batches carrying a non-finite
	// value or timestamp. The offending batch is discarded as a whole.
	ErrInvalidSample = errors.New("invalid sample")

	// ErrUnknownSignal rejects batches that reference a signal name
	// outside the controller's fixed signal set.
	ErrUnknownSignal = errors.New("unknown signal")

	ErrDuplicateSignal = errors.New("duplicate signal name")
	ErrNoSignals       = errors.New("no signals configured")
	ErrInvalidWindow   = errors.New("window must be positive")
)
