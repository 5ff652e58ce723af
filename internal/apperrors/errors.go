package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure so the HTTP layer can map it to a status code
// without inspecting error strings.
type Kind int

const (
	KindInternal Kind = iota
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindValidation
)

// Sentinel errors for the common outcomes. Wrap with fmt.Errorf("%w: ...")
// to add context; classification survives wrapping.
var (
	ErrUnauthenticated = &Error{kind: KindUnauthenticated, msg: "authentication required"}
	ErrForbidden       = &Error{kind: KindForbidden, msg: "access denied"}
	ErrNotFound        = &Error{kind: KindNotFound, msg: "resource not found"}
)

// Error carries a classified failure with an optional public message.
type Error struct {
	kind Kind
	msg  string
}

func (e *Error) Error() string { return e.msg }

// Kind returns the classification of e.
func (e *Error) Kind() Kind { return e.kind }

// Unauthenticated builds a classified authentication failure. The message is
// deliberately generic: callers must not learn which verification step failed.
func Unauthenticated() error {
	return ErrUnauthenticated
}

// Forbidden builds a classified authorization failure with a public message.
func Forbidden(msg string) error {
	if msg == "" {
		return ErrForbidden
	}
	return &Error{kind: KindForbidden, msg: msg}
}

// NotFound builds a classified not-found failure with a public message.
func NotFound(format string, args ...interface{}) error {
	return &Error{kind: KindNotFound, msg: fmt.Sprintf(format, args...)}
}

// Validation builds a classified validation failure with a public message.
func Validation(format string, args ...interface{}) error {
	return &Error{kind: KindValidation, msg: fmt.Sprintf(format, args...)}
}

// KindOf extracts the classification from err, unwrapping as needed.
// Unclassified errors are internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind()
	}
	return KindInternal
}

// StatusCode maps a classified error to its HTTP status code.
func StatusCode(err error) int {
	switch KindOf(err) {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
