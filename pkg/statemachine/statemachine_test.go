package statemachine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aDramaQueen/messenger/pkg/statemachine"
)

const (
	stateConnecting statemachine.State = "connecting"
	stateOpen       statemachine.State = "open"
	stateClosed     statemachine.State = "closed"

	eventAccept statemachine.Event = "accept"
	eventClose  statemachine.Event = "close"
)

func newLifecycle() *statemachine.Machine {
	m := statemachine.New(stateConnecting)
	m.AddTransition(stateConnecting, stateOpen, eventAccept)
	m.AddTransition(stateConnecting, stateClosed, eventClose)
	m.AddTransition(stateOpen, stateClosed, eventClose)
	return m
}

func TestMachine_Transitions(t *testing.T) {
	ctx := context.Background()
	m := newLifecycle()

	assert.Equal(t, stateConnecting, m.Current())
	require.NoError(t, m.Fire(ctx, eventAccept))
	assert.Equal(t, stateOpen, m.Current())
	require.NoError(t, m.Fire(ctx, eventClose))
	assert.Equal(t, stateClosed, m.Current())
}

func TestMachine_NoTransition(t *testing.T) {
	ctx := context.Background()
	m := newLifecycle()

	require.NoError(t, m.Fire(ctx, eventClose))
	assert.Equal(t, stateClosed, m.Current())

	// Closed is terminal.
	err := m.Fire(ctx, eventAccept)
	var noTransition *statemachine.NoTransitionError
	require.ErrorAs(t, err, &noTransition)
	assert.Equal(t, stateClosed, noTransition.From)
	assert.Equal(t, eventAccept, noTransition.Event)
}

func TestMachine_ActionRunsBeforeStateChange(t *testing.T) {
	ctx := context.Background()
	m := statemachine.New(stateConnecting)

	var observed []statemachine.State
	m.AddTransition(stateConnecting, stateOpen, eventAccept,
		func(_ context.Context, from, to statemachine.State, _ statemachine.Event) error {
			observed = append(observed, from, to)
			return nil
		})

	require.NoError(t, m.Fire(ctx, eventAccept))
	assert.Equal(t, []statemachine.State{stateConnecting, stateOpen}, observed)
}

func TestMachine_FailingActionAbortsTransition(t *testing.T) {
	ctx := context.Background()
	m := statemachine.New(stateConnecting)
	m.AddTransition(stateConnecting, stateOpen, eventAccept,
		func(context.Context, statemachine.State, statemachine.State, statemachine.Event) error {
			return assert.AnError
		})

	err := m.Fire(ctx, eventAccept)
	require.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, stateConnecting, m.Current())
}

func TestMachine_CanFireAndReset(t *testing.T) {
	m := newLifecycle()

	assert.True(t, m.CanFire(eventAccept))
	require.NoError(t, m.Fire(context.Background(), eventAccept))
	assert.False(t, m.CanFire(eventAccept))

	m.Reset()
	assert.Equal(t, stateConnecting, m.Current())
	assert.True(t, m.CanFire(eventAccept))
}
