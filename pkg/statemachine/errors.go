package statemachine

import "fmt"

// NoTransitionError indicates the current state has no transition for the
// fired event.
type NoTransitionError struct {
	From  State
	Event Event
}

func (e *NoTransitionError) Error() string {
	return fmt.Sprintf("no transition from state %q for event %q", e.From, e.Event)
}
