package domain

import (
	"errors"
)

// Storage-level sentinel errors. Repositories map driver errors onto these
// so services never inspect PostgreSQL error codes directly.
var (
	// ErrConflict marks a transient write-write conflict (deadlock or
	// serialization failure). Safe to retry after rolling back.
	ErrConflict = errors.New("transient storage conflict")

	// ErrAlreadyExists marks a unique constraint violation.
	ErrAlreadyExists = errors.New("record already exists")

	// ErrNotFound marks a missing record.
	ErrNotFound = errors.New("record not found")
)
