// Package store owns the durable message data: users, direct messages and
// group messages.
//
// Storage is a capability interface with in-memory and PostgreSQL
// implementations. The Store service wraps a Storage and publishes a typed
// event on the bus after every successful mutation, which is how the
// notification ledger learns about unread units appearing and disappearing.
//
// Idempotence lives at the storage level: marking a message received
// reports whether anything actually changed, and adding group targets
// returns only the users that were genuinely added, so downstream counters
// are incremented and decremented exactly once per real state change.
package store
