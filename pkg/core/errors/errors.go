package errors

import (
	"errors"
	"fmt"
)

// Error kinds raised by the provider client. Match with errors.Is.
var (
	ErrConfiguration      = errors.New("opensubtitles: invalid configuration")
	ErrAuthentication     = errors.New("opensubtitles: authentication failed")
	ErrTooManyRequests    = errors.New("opensubtitles: rate limit exceeded")
	ErrServiceUnavailable = errors.New("opensubtitles: service unavailable")
	ErrProvider           = errors.New("opensubtitles: provider error")
	ErrParse              = errors.New("opensubtitles: unparseable response")
	ErrInvalidInput       = errors.New("opensubtitles: invalid subtitle search data")
	ErrIO                 = errors.New("opensubtitles: local i/o failure")
	ErrQuotaExceeded      = errors.New("opensubtitles: download quota exceeded")

	// Application/Flow specific errors
	ErrNotLoggedIn = fmt.Errorf("client: not logged in: %w", ErrAuthentication)
)

// APIError describes a failed exchange with the provider.
type APIError struct {
	Kind       error  // one of the Err* kinds above
	Op         string // login, search, download, ...
	StatusCode int    // 0 for transport failures
	Message    string
	Err        error // underlying cause, may be nil
}

// Error implements the error interface.
func (e *APIError) Error() string {
	msg := e.Kind.Error()
	if e.Op != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Op)
	}
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s: status %d", msg, e.StatusCode)
	}
	if e.Message != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Message)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *APIError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// New builds an APIError of the given kind.
func New(kind error, op string, status int, message string, cause error) *APIError {
	return &APIError{Kind: kind, Op: op, StatusCode: status, Message: message, Err: cause}
}

// Retryable reports whether err is transient enough for a caller to retry
// after backing off.
func Retryable(err error) bool {
	return errors.Is(err, ErrServiceUnavailable) || errors.Is(err, ErrTooManyRequests)
}

// Kind returns a short stable name for the taxonomy kind of err, or
// "unknown" when err is not part of it. A provider error caused by a parse
// failure is a provider error.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrAuthentication):
		return "authentication"
	case errors.Is(err, ErrTooManyRequests):
		return "too_many_requests"
	case errors.Is(err, ErrServiceUnavailable):
		return "service_unavailable"
	case errors.Is(err, ErrQuotaExceeded):
		return "quota_exceeded"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrIO):
		return "io"
	case errors.Is(err, ErrProvider):
		return "provider"
	case errors.Is(err, ErrParse):
		return "parse"
	default:
		return "unknown"
	}
}
