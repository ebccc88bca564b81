package errors

import (
	"errors"
	"net/http"
)

// Kind classifies an error for transport mapping.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindConflict
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// MsgInternal is the only text ever returned to clients for internal failures.
const MsgInternal = "Internal server error"

var (
	// ErrInvalidCredentials covers unknown email, wrong password and inactive accounts alike.
	ErrInvalidCredentials = Unauthorized("Invalid email or password")
	// ErrMissingToken is returned when no session cookie accompanies the request.
	ErrMissingToken = Unauthorized("No authentication token found")
	// ErrInvalidToken is returned for malformed, forged or expired session tokens.
	ErrInvalidToken = Unauthorized("Invalid or expired token")
	// ErrDuplicateEmail is returned when the email is already registered.
	ErrDuplicateEmail = Conflict("User with this email already exists")
	// ErrUserUnavailable is returned when a valid token references a missing or inactive user.
	ErrUserUnavailable = NotFound("User not found or inactive")
	// ErrUserNotFound is returned by user administration lookups.
	ErrUserNotFound = NotFound("User not found")
	// ErrProductNotFound is returned when a product does not exist.
	ErrProductNotFound = NotFound("Product not found")
)

// Error is a classified application error. Message is safe to show to
// clients; Err carries the underlying cause for server-side logs only.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Kind == KindInternal {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches errors of the same kind and message so sentinels compare equal
// to copies that carry a different cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

// Validation creates a ValidationError with a client-facing message.
func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// Unauthorized creates an authentication failure.
func Unauthorized(msg string) *Error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

// Conflict creates a uniqueness failure.
func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

// NotFound creates a missing-resource failure.
func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// Internal wraps an unexpected failure. The cause never reaches the client.
func Internal(cause error) *Error {
	return &Error{Kind: KindInternal, Message: MsgInternal, Err: cause}
}

// WithCause returns a copy of e carrying cause for diagnostics.
func (e *Error) WithCause(cause error) *Error {
	return &Error{Kind: e.Kind, Message: e.Message, Err: cause}
}

// KindOf reports the kind of err; unclassified errors are internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	var e *Error
	if !errors.As(err, &e) {
		return NewHTTPError(http.StatusInternalServerError, MsgInternal, "INTERNAL_ERROR")
	}

	switch e.Kind {
	case KindValidation:
		return NewHTTPError(http.StatusBadRequest, e.Message, "VALIDATION_ERROR")
	case KindUnauthorized:
		return NewHTTPError(http.StatusUnauthorized, e.Message, "UNAUTHORIZED")
	case KindConflict:
		return NewHTTPError(http.StatusConflict, e.Message, "CONFLICT")
	case KindNotFound:
		return NewHTTPError(http.StatusNotFound, e.Message, "NOT_FOUND")
	default:
		return NewHTTPError(http.StatusInternalServerError, MsgInternal, "INTERNAL_ERROR")
	}
}
