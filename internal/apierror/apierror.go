// Package apierror defines user-facing errors with their HTTP and gRPC mappings.
package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/grpc/codes"
)

// Kind classifies an APIError.
type Kind string

const (
	KindValidation      Kind = "validation"
	KindConflict        Kind = "conflict"
	KindNotFound        Kind = "not_found"
	KindInvalid         Kind = "invalid"
	KindExpired         Kind = "expired"
	KindRateLimited     Kind = "rate_limited"
	KindUnauthenticated Kind = "unauthenticated"
	KindInternal        Kind = "internal"
)

// APIError is an error that is safe to show to the caller.
type APIError struct {
	Kind       Kind
	HTTPStatus int
	GRPCCode   codes.Code
	Message    string
	// Fields are extra response body members, e.g. a redirect hint.
	Fields map[string]any
	cause  error
}

func (e *APIError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.cause
}

// As extracts an APIError from err.
func As(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// KindOf returns the kind of err, or KindInternal for errors that are not APIErrors.
func KindOf(err error) Kind {
	if apiErr, ok := As(err); ok {
		return apiErr.Kind
	}
	return KindInternal
}

func newErr(kind Kind, httpStatus int, grpcCode codes.Code, msg string) *APIError {
	return &APIError{Kind: kind, HTTPStatus: httpStatus, GRPCCode: grpcCode, Message: msg}
}

func NewErrValidation(msg string) *APIError {
	return newErr(KindValidation, http.StatusBadRequest, codes.InvalidArgument, msg)
}

func NewErrNonInstitutionalEmail(suffixes []string) *APIError {
	return NewErrValidation("Must use an email ending in " + strings.Join(suffixes, " or "))
}

func NewErrDomainMismatch() *APIError {
	return NewErrValidation("Email domain does not match selected university")
}

func NewErrWeakPassword() *APIError {
	return NewErrValidation("Password must be at least 8 characters long and contain both letters and numbers")
}

func NewErrEmailIsTaken() *APIError {
	return newErr(KindConflict, http.StatusConflict, codes.AlreadyExists, "User already exists")
}

func NewErrUserNotFound() *APIError {
	return newErr(KindNotFound, http.StatusNotFound, codes.NotFound, "User not found")
}

func NewErrCodeNotFound() *APIError {
	return newErr(KindNotFound, http.StatusNotFound, codes.NotFound, "No code found")
}

func NewErrCodeInvalid() *APIError {
	return newErr(KindInvalid, http.StatusUnauthorized, codes.PermissionDenied, "Invalid code")
}

func NewErrCodeExpired() *APIError {
	return newErr(KindExpired, http.StatusGone, codes.FailedPrecondition, "Code expired")
}

func NewErrRateLimited(retryAfterSeconds int) *APIError {
	e := newErr(KindRateLimited, http.StatusTooManyRequests, codes.ResourceExhausted,
		fmt.Sprintf("Please wait %d seconds before requesting a new code", retryAfterSeconds))
	e.Fields = map[string]any{"retry_after": retryAfterSeconds}
	return e
}

func NewErrNotVerified(email string) *APIError {
	e := newErr(KindUnauthenticated, http.StatusUnauthorized, codes.Unauthenticated, "Not verified")
	e.Fields = map[string]any{"redirect": "/verify", "email": email}
	return e
}

func NewErrInvalidCredentials() *APIError {
	return newErr(KindUnauthenticated, http.StatusUnauthorized, codes.Unauthenticated, "Incorrect password")
}

func NewErrInvalidToken() *APIError {
	return newErr(KindUnauthenticated, http.StatusUnauthorized, codes.Unauthenticated, "Invalid or expired token")
}

func NewErrMissingToken() *APIError {
	return newErr(KindUnauthenticated, http.StatusUnauthorized, codes.Unauthenticated, "Authorization token is missing")
}

func NewErrListingNotFound() *APIError {
	return newErr(KindNotFound, http.StatusNotFound, codes.NotFound, "Listing not found")
}

func NewErrInternalServerError(err error) *APIError {
	e := newErr(KindInternal, http.StatusInternalServerError, codes.Internal, "Internal server error")
	e.cause = err
	return e
}
