package control

import "errors"

var (
	// ErrMissingElement is returned when a page has no control with the requested ID
	ErrMissingElement = errors.New("missing page element")

	// ErrDuplicateElement is returned when two controls share an ID
	ErrDuplicateElement = errors.New("duplicate page element")

	// ErrDuplicateCustomInput is returned when a radio group declares two custom inputs
	ErrDuplicateCustomInput = errors.New("duplicate radio custom input")

	// ErrInvalidValue is returned when a control cannot display a value
	ErrInvalidValue = errors.New("invalid control value")

	// ErrDetached is returned when focusing a control no longer on the page
	ErrDetached = errors.New("control is detached")
)
