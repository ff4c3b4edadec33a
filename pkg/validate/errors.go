package validate

import "errors"

var (
	// ErrInvalidRange is returned when a range string cannot be parsed
	ErrInvalidRange = errors.New("invalid range")

	// ErrInvalidPattern is returned when a pattern is neither named nor a valid regex
	ErrInvalidPattern = errors.New("invalid pattern")
)
