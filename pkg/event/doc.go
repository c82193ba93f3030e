// Package event connects store-level mutations to ledger updates.
//
// The store publishes a typed event after each successful mutation;
// reactors subscribed by event kind translate it into ledger calls.
// Publishing is synchronous on the mutating goroutine and handler errors
// propagate back to the publisher, so a caller observing a completed
// mutation also observes the ledger update, and a ledger outage fails the
// triggering call instead of leaving the counter silently inconsistent.
//
// The bus keeps the ledger decoupled from specific store operations and
// makes the reactor table testable with synthetic events.
package event
