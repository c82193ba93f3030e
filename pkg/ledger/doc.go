// Package ledger maintains the durable per-user unread message counter.
//
// A record is created the moment its user is created and destroyed with the
// user. Counter mutations are atomic read-modify-writes in the storage
// backend, so concurrent increments from independent event reactors are
// never lost, and the counter never drops below zero.
//
// Every successful Increment and Decrement pushes the new counter to the
// user's live connections through the configured Pusher. Delivery is best
// effort: the counter is already durable, so a failed push is logged and
// dropped rather than surfaced to the mutating caller. Reset recomputes the
// counter from the authoritative unread counts and intentionally does not
// push.
package ledger
