package array

import "errors"

// Backend errors. Callers match them with errors.Is.
var (
	// ErrRaggedInput means nested input rows have different lengths.
	ErrRaggedInput = errors.New("ragged nested input")

	// ErrUnsupportedValue means a value cannot be converted to an array.
	ErrUnsupportedValue = errors.New("unsupported array value")

	// ErrDimsMismatch means dimension names do not fit an array's rank or shape.
	ErrDimsMismatch = errors.New("dims mismatch")

	// ErrIndex means an index is out of range or has the wrong length.
	ErrIndex = errors.New("index out of range")

	// ErrShape means a requested shape is invalid or incompatible.
	ErrShape = errors.New("invalid shape")
)
