package store

import "errors"

var (
	// ErrNotFound is returned when the referenced user or message does not
	// exist.
	ErrNotFound = errors.New("store: not found")

	// ErrAlreadyExists is returned when creating a record whose id is taken.
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrStoreUnavailable indicates the backing database could not complete
	// the operation.
	ErrStoreUnavailable = errors.New("store: backend unavailable")
)
