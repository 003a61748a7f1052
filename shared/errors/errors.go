package errors

import (
	"errors"
	"net/http"
)

// default error is internal service error at handler level
// if error has different status code use ErrorWithStatusCode
type ErrorWithStatusCode struct {
	Message    string
	StatusCode int
}

func (e *ErrorWithStatusCode) Error() string {
	return e.Message
}

var (
	ErrNotConnected      = errors.New("not connected to relays")
	ErrNoWritableRelays  = errors.New("no connected relays with write permission")
	ErrPublishFailed     = errors.New("failed to publish event to any relay")
	ErrMissingPrivateKey = errors.New("identity has no private key to sign with")

	ErrThreadNotFound       = errors.New("thread not found")
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrBoardExists          = errors.New("board with this short name already exists")
	ErrRelayExists          = errors.New("relay already configured")
	ErrRelayNotFound        = errors.New("relay not configured")

	// Decode failures never leave the codec batch helpers.
	ErrMalformedEvent = errors.New("malformed event")
	ErrValidation     = errors.New("validation failed")
)

// StatusCode maps a core error to the status the http edge reports.
func StatusCode(err error) int {
	var withCode *ErrorWithStatusCode
	switch {
	case errors.As(err, &withCode):
		return withCode.StatusCode
	case errors.Is(err, ErrNotConnected), errors.Is(err, ErrNoWritableRelays):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrPublishFailed):
		return http.StatusBadGateway
	case errors.Is(err, ErrMissingPrivateKey):
		return http.StatusForbidden
	case errors.Is(err, ErrThreadNotFound), errors.Is(err, ErrSubscriptionNotFound),
		errors.Is(err, ErrNotificationNotFound), errors.Is(err, ErrRelayNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrBoardExists), errors.Is(err, ErrRelayExists):
		return http.StatusConflict
	case errors.Is(err, ErrValidation), errors.Is(err, ErrMalformedEvent):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
