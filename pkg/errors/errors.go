package errors

import (
	"errors"
	"fmt"
)

// Transition rejections. These are resolved locally and surfaced to the
// requester as a reason code; they are never retried automatically.
var (
	ErrNotAuthorized          = errors.New("actor is not authorized for this action")
	ErrInvalidStateTransition = errors.New("entity is not in a state compatible with the requested transition")
	ErrScopeMismatch          = errors.New("actor's lab does not match the entity's lab")
)

// Infrastructure failures. A store failure is retryable by the requester;
// approval-slot writes are idempotent so a whole-transition retry is safe.
var (
	ErrStoreUnavailable = errors.New("store is temporarily unavailable")
	ErrPartialFanout    = errors.New("some notification recipients were not reached")
)

// Auth and token errors.
var (
	ErrEmptyAuthHeader    = errors.New("authorization header is missing")
	ErrInvalidAuthHeader  = errors.New("authorization header is malformed")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token has expired")
	ErrTokenIsNotAccess   = errors.New("token is not an access token")
	ErrActorNotInContext  = errors.New("actor not found in request context")
)

// General errors.
var (
	ErrNotFound   = errors.New("record not found")
	ErrBadRequest = errors.New("bad request")
)

// InvalidInputError carries a validation message for the requester.
type InvalidInputError struct {
	Message string
}

func (e *InvalidInputError) Error() string { return e.Message }

func NewInvalidInputError(format string, args ...interface{}) error {
	return &InvalidInputError{Message: fmt.Sprintf(format, args...)}
}

// Rejection wraps one of the transition sentinels with the human-readable
// reason shown to the requester ("already approved by Head of Department").
type Rejection struct {
	Err    error
	Reason string
}

func (r *Rejection) Error() string { return r.Reason }

func (r *Rejection) Unwrap() error { return r.Err }

func NewRejection(err error, format string, args ...interface{}) error {
	return &Rejection{Err: err, Reason: fmt.Sprintf(format, args...)}
}
