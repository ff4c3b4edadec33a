package xmltree

import "errors"

var (
	// ErrParse is returned when the document is not well-formed XML
	ErrParse = errors.New("failed to parse settings document")

	// ErrNoRoot is returned when the document has no root element
	ErrNoRoot = errors.New("settings document has no root element")
)
