package database

import "errors"

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateIdentity is returned when enrolling a name that already exists.
	ErrDuplicateIdentity = errors.New("identity already enrolled")

	// ErrOpenSessionExists is returned when a concurrent trigger already
	// opened a session for the subject. The storage layer enforces the
	// at-most-one-OPEN-session invariant; callers treat this as a lost race,
	// not a failure of the service.
	ErrOpenSessionExists = errors.New("subject already has an open session")
)
