// Package apperror defines the request-facing error taxonomy for the
// application. Every failure that can reach an HTTP response is expressed
// as one of a closed set of error kinds, each with a fixed status-code
// mapping and a client-safe message. Internal causes are carried for
// logging but never serialized into responses.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType enumerates the request-level error kinds.
type ErrorType int

const (
	// UnknownError is for states that should be impossible, such as an
	// ambiguous credential match. Always a server-side defect.
	UnknownError ErrorType = iota
	// MissingAuthHeaderError means the request carried no Authorization header.
	MissingAuthHeaderError
	// InvalidHeaderError means a header was present but could not be parsed.
	InvalidHeaderError
	// InvalidTokenError means a bearer token failed signature or claims checks.
	InvalidTokenError
	// InvalidCredentialsError means the supplied credentials matched no user.
	InvalidCredentialsError
	// DBFailError wraps a storage failure that is not a not-found condition.
	DBFailError
	// NotFoundError means the requested entity does not exist.
	NotFoundError
	// BadRequestError means the request body or parameters were malformed.
	BadRequestError
	// ConflictError means the request collides with existing state,
	// e.g. a duplicate username on registration.
	ConflictError
	// GenericError names a failing operation without further classification.
	GenericError
)

// AppError is the error value used throughout the request path. Message is
// safe to return to clients; Err is the underlying cause and is only ever
// logged.
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the underlying cause to errors.Is / errors.As.
func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode maps the error kind to its HTTP status. The mapping is fixed:
// missing or malformed headers are the client's fault (400), credential and
// token failures are 401, absent entities 404, and everything else is a
// server error.
func (e *AppError) StatusCode() int {
	switch e.Type {
	case MissingAuthHeaderError, InvalidHeaderError, BadRequestError:
		return http.StatusBadRequest
	case InvalidTokenError, InvalidCredentialsError:
		return http.StatusUnauthorized
	case NotFoundError:
		return http.StatusNotFound
	case ConflictError:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// NewAppError creates an AppError of an arbitrary kind.
func NewAppError(errType ErrorType, message string, underlying error) *AppError {
	return &AppError{Type: errType, Message: message, Err: underlying}
}

// NewMissingAuthHeader reports a request without an Authorization header.
func NewMissingAuthHeader() *AppError {
	return NewAppError(MissingAuthHeaderError, "request is missing authentication header", nil)
}

// NewInvalidHeader reports an unparseable header. The reason describes the
// parse failure; the raw header value is deliberately not echoed back.
func NewInvalidHeader(header, reason string, underlying error) *AppError {
	return NewAppError(InvalidHeaderError, fmt.Sprintf("invalid header %q: %s", header, reason), underlying)
}

// NewInvalidToken reports a bearer token that failed validation. The cause
// is kept for logging only.
func NewInvalidToken(underlying error) *AppError {
	return NewAppError(InvalidTokenError, "token is not valid", underlying)
}

// NewInvalidCredentials reports a credential check that matched no user.
// It never carries detail about which part of the credentials was wrong.
func NewInvalidCredentials() *AppError {
	return NewAppError(InvalidCredentialsError, "provided invalid credentials", nil)
}

// NewDBFail wraps a storage failure behind a client-safe summary.
func NewDBFail(summary string, underlying error) *AppError {
	return NewAppError(DBFailError, "failed to execute query: "+summary, underlying)
}

// NewNotFound reports an absent entity.
func NewNotFound(what string, underlying error) *AppError {
	return NewAppError(NotFoundError, "requested data not found: "+what, underlying)
}

// NewBadRequest reports a malformed request body or parameter.
func NewBadRequest(message string, underlying error) *AppError {
	return NewAppError(BadRequestError, message, underlying)
}

// NewConflict reports a collision with existing state.
func NewConflict(message string, underlying error) *AppError {
	return NewAppError(ConflictError, message, underlying)
}

// NewGeneric reports a failed operation by name, e.g. "encode token".
func NewGeneric(what string, underlying error) *AppError {
	return NewAppError(GenericError, "failed "+what, underlying)
}

// NewUnknown reports a state that the invariants say cannot happen.
func NewUnknown(underlying error) *AppError {
	return NewAppError(UnknownError, "something unexpected has happened", underlying)
}

// ErrorResponse is the JSON body returned to clients for any error.
type ErrorResponse struct {
	Error string `json:"error" example:"a description of the error"`
}

// ToResponse converts the error into its client-visible form. Only Message
// is included, never the wrapped cause.
func (e *AppError) ToResponse() ErrorResponse {
	return ErrorResponse{Error: e.Message}
}

// FromError converts err to an *AppError if one is present in its chain.
func FromError(err error) (*AppError, bool) {
	if err == nil {
		return nil, false
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsNotFound reports whether err is a NotFoundError anywhere in its chain.
func IsNotFound(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == NotFoundError
}

// IsInvalidCredentials reports whether err is an InvalidCredentialsError.
func IsInvalidCredentials(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == InvalidCredentialsError
}

// IsConflict reports whether err is a ConflictError.
func IsConflict(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == ConflictError
}
