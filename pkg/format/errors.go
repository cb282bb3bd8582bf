package format

import "errors"

var (
	// ErrInvalidHeader indicates a truncated header or inconsistent cursors.
	ErrInvalidHeader = errors.New("invalid log header")
	// ErrMagicMismatch indicates the magic number doesn't match.
	ErrMagicMismatch = errors.New("magic number mismatch")
)
