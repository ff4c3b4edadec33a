package api

import (
	"errors"
	"net/http"

	"sitemap-console/pkg/console"
	"sitemap-console/pkg/setting"
	"sitemap-console/pkg/storage"
	"sitemap-console/pkg/xmltree"
)

// statusFor maps console and storage errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, setting.ErrValidationFailed),
		errors.Is(err, setting.ErrNotList),
		errors.Is(err, setting.ErrMalformedField),
		errors.Is(err, xmltree.ErrParse),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, console.ErrUnknownPage),
		errors.Is(err, console.ErrUnknownSite),
		errors.Is(err, console.ErrUnknownSetting),
		errors.Is(err, setting.ErrItemNotFound),
		errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, setting.ErrInputRejected),
		errors.Is(err, setting.ErrAlreadySpecified),
		errors.Is(err, console.ErrDeclined),
		errors.Is(err, console.ErrNotOnScreen):
		return http.StatusConflict
	case errors.Is(err, setting.ErrReadonly):
		return http.StatusLocked
	case errors.Is(err, console.ErrNoDocument),
		errors.Is(err, console.ErrSessionClosed),
		errors.Is(err, errNoSource):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

var (
	errBadRequest = errors.New("malformed request")
	errNoSource   = errors.New("no document source configured")
)
