package ledger

import "context"

// Storage persists ledger records. Increment and Decrement must be atomic
// with respect to the persisted value: two concurrent calls on the same
// record must both be durably reflected.
type Storage interface {
	// Create inserts a record with a zero counter. Creating an existing
	// record is a no-op.
	Create(ctx context.Context, userID string) error

	// Delete removes the user's record. Deleting an absent record is a no-op.
	Delete(ctx context.Context, userID string) error

	// Increment adds one to the counter and returns the new value.
	Increment(ctx context.Context, userID string) (int, error)

	// Decrement subtracts one from the counter, floored at zero, and returns
	// the new value.
	Decrement(ctx context.Context, userID string) (int, error)

	// Set overwrites the counter with the given value.
	Set(ctx context.Context, userID string, count int) error

	// Get returns the current counter, or ErrRecordNotFound.
	Get(ctx context.Context, userID string) (int, error)
}
