package event

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_PublishSubscribe(t *testing.T) {
	ctx := context.Background()

	t.Run("handler receives matching kind", func(t *testing.T) {
		bus := NewBus()
		var got Event
		bus.Subscribe(KindUserCreated, func(ctx context.Context, e Event) error {
			got = e
			return nil
		})

		require.NoError(t, bus.Publish(ctx, UserCreated{UserID: "u1"}))
		assert.Equal(t, UserCreated{UserID: "u1"}, got)
	})

	t.Run("handler ignores other kinds", func(t *testing.T) {
		bus := NewBus()
		called := false
		bus.Subscribe(KindUserDeleted, func(ctx context.Context, e Event) error {
			called = true
			return nil
		})

		require.NoError(t, bus.Publish(ctx, UserCreated{UserID: "u1"}))
		assert.False(t, called)
	})

	t.Run("publish without subscribers is a no-op", func(t *testing.T) {
		bus := NewBus()
		require.NoError(t, bus.Publish(ctx, UserCreated{UserID: "u1"}))
	})

	t.Run("handler error propagates to publisher", func(t *testing.T) {
		bus := NewBus()
		boom := errors.New("ledger down")
		bus.Subscribe(KindUserMessageCreated, func(ctx context.Context, e Event) error {
			return boom
		})

		err := bus.Publish(ctx, UserMessageCreated{MessageID: "m1", OwnerID: "u1"})
		assert.ErrorIs(t, err, boom)
	})

	t.Run("all handlers run despite earlier failure", func(t *testing.T) {
		bus := NewBus()
		boom := errors.New("first failed")
		second := false
		bus.Subscribe(KindUserCreated, func(ctx context.Context, e Event) error { return boom })
		bus.Subscribe(KindUserCreated, func(ctx context.Context, e Event) error {
			second = true
			return nil
		})

		err := bus.Publish(ctx, UserCreated{UserID: "u1"})
		assert.ErrorIs(t, err, boom)
		assert.True(t, second)
	})

	t.Run("nil handler is ignored", func(t *testing.T) {
		bus := NewBus()
		bus.Subscribe(KindUserCreated, nil)
		require.NoError(t, bus.Publish(ctx, UserCreated{UserID: "u1"}))
	})
}
