package domain

import "errors"

// ErrNotFound is returned when a referenced entity does not exist or is not
// visible to the caller. The two cases are deliberately indistinguishable so
// that callers cannot probe for another user's events or requests.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a business-rule precondition fails: wrong
// state, capacity exhausted, duplicate request, timing constraint, or a
// forbidden self-action.
var ErrConflict = errors.New("conflict")

// ErrInvalidInput is returned when the request is malformed.
var ErrInvalidInput = errors.New("invalid input")
