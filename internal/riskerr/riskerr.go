// Package riskerr defines the error taxonomy shared by the risk-assessment
// pipeline and the HTTP boundary.
package riskerr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for boundary handling.
type Kind string

const (
	// KindValidation covers bad caller input (coordinates, dates, enums).
	KindValidation Kind = "validation_error"
	// KindInsufficientCoverage is returned when the sample baseline does not
	// meet the configured coverage minima and enforcement is on.
	KindInsufficientCoverage Kind = "insufficient_coverage"
	// KindRateLimited is an upstream 429 that survived all retries.
	KindRateLimited Kind = "rate_limited"
	// KindBadResponse is a structurally invalid upstream response.
	KindBadResponse Kind = "bad_response"
	// KindUpstream covers transport failures and upstream 5xx responses.
	KindUpstream Kind = "upstream_failure"
	// KindNumerical signals a failure inside the statistical machinery.
	KindNumerical Kind = "numerical_error"
	// KindInternal is everything else.
	KindInternal Kind = "internal"
)

// Error carries a Kind alongside a message and an optional wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an Error of the given kind.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error of the given kind wrapping a cause.
func Wrap(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the Kind from an error chain, defaulting to KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether the error chain carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// HTTPStatus maps an error kind to the status code emitted at the boundary.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindInsufficientCoverage:
		return http.StatusUnprocessableEntity
	case KindRateLimited, KindBadResponse, KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
