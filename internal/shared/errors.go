package shared

import "errors"

var (
	// ErrNotFound indicates a referenced record does not resolve.
	ErrNotFound = errors.New("not found")
	// ErrValidation indicates a request that fails a business rule.
	ErrValidation = errors.New("validation failed")
	// ErrConflict indicates a duplicate unique key or a stale revision.
	ErrConflict = errors.New("conflict")
	// ErrLocked indicates an edit attempt on a record whose status forbids changes.
	ErrLocked = errors.New("record locked")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
