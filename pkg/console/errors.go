package console

import "errors"

var (
	// ErrUnknownGeneration is returned for a console generation name that does not exist
	ErrUnknownGeneration = errors.New("unknown console generation")

	// ErrUnknownPage is returned for a page ID the console does not have
	ErrUnknownPage = errors.New("unknown page")

	// ErrUnknownSite is returned for a site index outside the loaded document
	ErrUnknownSite = errors.New("unknown site")

	// ErrUnknownSetting is returned when a page has no setting with the requested name
	ErrUnknownSetting = errors.New("unknown setting")

	// ErrNoDocument is returned by operations that need a document before SetData was called
	ErrNoDocument = errors.New("no settings document loaded")

	// ErrDeclined is returned when the operator declines a confirmation
	ErrDeclined = errors.New("declined by operator")

	// ErrNotOnScreen is returned when a page that is not on screen is edited
	ErrNotOnScreen = errors.New("page is not on screen")

	// ErrSessionClosed is returned when a command is sent to a stopped session
	ErrSessionClosed = errors.New("console session closed")
)
