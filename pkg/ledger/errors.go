package ledger

import "errors"

var (
	// ErrRecordNotFound is returned when no ledger record exists for a user.
	ErrRecordNotFound = errors.New("ledger: record not found")

	// ErrStoreUnavailable indicates the backing store could not complete the
	// mutation; the triggering caller should fail rather than continue with
	// an inconsistent counter.
	ErrStoreUnavailable = errors.New("ledger: store unavailable")
)
