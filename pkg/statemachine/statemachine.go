// Package statemachine provides a small thread-safe finite state machine
// used to track connection lifecycles.
package statemachine

import (
	"context"
	"fmt"
	"sync"
)

// State is a named machine state.
type State string

// Event is a named trigger for a state transition.
type Event string

// Action executes side effects during a transition. A non-nil error aborts
// the transition and the machine stays in its current state.
type Action func(ctx context.Context, from, to State, event Event) error

type transition struct {
	to      State
	actions []Action
}

// Machine is a thread-safe finite state machine. Transitions are keyed by
// (current state, event); at most one transition per pair.
type Machine struct {
	initial     State
	current     State
	transitions map[State]map[Event]transition
	mu          sync.RWMutex
}

// New creates a machine in the given initial state.
func New(initial State) *Machine {
	return &Machine{
		initial:     initial,
		current:     initial,
		transitions: make(map[State]map[Event]transition),
	}
}

// Current returns the machine's current state.
func (m *Machine) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// AddTransition registers a state change for an event. Registering the same
// (from, event) pair twice replaces the earlier transition.
func (m *Machine) AddTransition(from, to State, event Event, actions ...Action) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.transitions[from]; !ok {
		m.transitions[from] = make(map[Event]transition)
	}
	m.transitions[from][event] = transition{to: to, actions: actions}
}

// Fire applies the event to the current state. Actions run before the state
// change; the first failing action aborts the transition.
func (m *Machine) Fire(ctx context.Context, event Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.transitions[m.current][event]
	if !ok {
		return &NoTransitionError{From: m.current, Event: event}
	}

	for _, action := range t.actions {
		if action == nil {
			continue
		}
		if err := action(ctx, m.current, t.to, event); err != nil {
			return fmt.Errorf("transition %s -> %s on %s: %w", m.current, t.to, event, err)
		}
	}

	m.current = t.to
	return nil
}

// CanFire reports whether the event has a transition from the current state.
func (m *Machine) CanFire(event Event) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.transitions[m.current][event]
	return ok
}

// Reset returns the machine to its initial state without running actions.
func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = m.initial
}
