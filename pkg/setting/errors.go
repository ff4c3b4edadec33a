package setting

import "errors"

var (
	// ErrUnknownType is returned when a schema names a setting type that does not exist
	ErrUnknownType = errors.New("unknown setting type")

	// ErrControlMismatch is returned when a control kind cannot display a setting type
	ErrControlMismatch = errors.New("control kind does not match setting type")

	// ErrDuplicateSetting is returned when two settings in one group share a name
	ErrDuplicateSetting = errors.New("duplicate setting name")

	// ErrDuplicateGroup is returned when two nested groups share a tag
	ErrDuplicateGroup = errors.New("duplicate settings group")

	// ErrUnbound is returned when a group has no XML element to read or write
	ErrUnbound = errors.New("settings group is not bound to an element")

	// ErrConversion is returned when a value cannot be converted between UI and storage units
	ErrConversion = errors.New("value conversion failed")

	// ErrInputRejected is returned when an input rule or confirmation declines an edit
	ErrInputRejected = errors.New("input rejected")

	// ErrReadonly is returned when editing a setting that is currently readonly
	ErrReadonly = errors.New("setting is readonly")

	// ErrValidationFailed is returned when an edited value does not validate
	ErrValidationFailed = errors.New("input validation failed")

	// ErrNotList is returned when a list operation targets a scalar setting
	ErrNotList = errors.New("setting is not a list")

	// ErrAlreadySpecified is returned when adding an active duplicate list item
	ErrAlreadySpecified = errors.New("already specified")

	// ErrItemNotFound is returned when a list index is out of range
	ErrItemNotFound = errors.New("list item not found")

	// ErrMalformedField is returned when a find/replace value has unbalanced brackets
	ErrMalformedField = errors.New("malformed complex field")
)
