package store_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aDramaQueen/messenger/pkg/event"
	"github.com/aDramaQueen/messenger/pkg/store"
)

// recorder captures every event published on the bus.
type recorder struct {
	mu     sync.Mutex
	events []event.Event
}

func (r *recorder) subscribe(bus *event.Bus) {
	kinds := []event.Kind{
		event.KindUserCreated,
		event.KindUserDeleted,
		event.KindUserMessageCreated,
		event.KindUserMessageReceived,
		event.KindUserMessageDeleted,
		event.KindGroupTargetsAdded,
		event.KindGroupMessageRead,
		event.KindGroupMessageDeleted,
	}
	for _, kind := range kinds {
		bus.Subscribe(kind, func(_ context.Context, e event.Event) error {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.events = append(r.events, e)
			return nil
		})
	}
}

func (r *recorder) all() []event.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]event.Event(nil), r.events...)
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

func newStore(t *testing.T) (*store.Store, *recorder) {
	t.Helper()
	bus := event.NewBus()
	rec := &recorder{}
	rec.subscribe(bus)
	return store.New(store.NewMemoryStorage(), bus), rec
}

func TestStore_CreateUserPublishesAndFillsDefaults(t *testing.T) {
	s, rec := newStore(t)
	ctx := context.Background()

	u, err := s.CreateUser(ctx, store.User{Active: true})
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.False(t, u.CreatedAt.IsZero())

	events := rec.all()
	require.Len(t, events, 1)
	assert.Equal(t, event.UserCreated{UserID: u.ID}, events[0])
}

func TestStore_UserMessageFlow(t *testing.T) {
	s, rec := newStore(t)
	ctx := context.Background()

	u, err := s.CreateUser(ctx, store.User{ID: "alice", Active: true})
	require.NoError(t, err)
	rec.reset()

	// Created messages are unread even if the caller says otherwise.
	m, err := s.CreateUserMessage(ctx, store.UserMessage{OwnerID: u.ID, Title: "hi", Received: true})
	require.NoError(t, err)
	assert.False(t, m.Received)

	require.NoError(t, s.MarkUserMessageReceived(ctx, m.ID))
	// Repeated mark publishes nothing.
	require.NoError(t, s.MarkUserMessageReceived(ctx, m.ID))
	require.NoError(t, s.DeleteUserMessage(ctx, m.ID))

	events := rec.all()
	require.Len(t, events, 3)
	assert.Equal(t, event.UserMessageCreated{MessageID: m.ID, OwnerID: "alice"}, events[0])
	assert.Equal(t, event.UserMessageReceived{MessageID: m.ID, OwnerID: "alice"}, events[1])
	assert.Equal(t, event.UserMessageDeleted{MessageID: m.ID, OwnerID: "alice", Received: true}, events[2])
}

func TestStore_DeleteUnreadUserMessage(t *testing.T) {
	s, rec := newStore(t)
	ctx := context.Background()

	_, err := s.CreateUser(ctx, store.User{ID: "alice", Active: true})
	require.NoError(t, err)
	m, err := s.CreateUserMessage(ctx, store.UserMessage{OwnerID: "alice"})
	require.NoError(t, err)
	rec.reset()

	require.NoError(t, s.DeleteUserMessage(ctx, m.ID))

	events := rec.all()
	require.Len(t, events, 1)
	assert.Equal(t, event.UserMessageDeleted{MessageID: m.ID, OwnerID: "alice", Received: false}, events[0])
}

func TestStore_GroupMessageFlow(t *testing.T) {
	s, rec := newStore(t)
	ctx := context.Background()

	for _, id := range []string{"alice", "bob", "carol"} {
		_, err := s.CreateUser(ctx, store.User{ID: id, Active: true})
		require.NoError(t, err)
	}
	rec.reset()

	g, err := s.CreateGroupMessage(ctx, store.GroupMessage{TargetIDs: []string{"alice", "bob"}})
	require.NoError(t, err)

	events := rec.all()
	require.Len(t, events, 1)
	added, ok := events[0].(event.GroupTargetsAdded)
	require.True(t, ok)
	assert.Equal(t, g.ID, added.MessageID)
	assert.ElementsMatch(t, []string{"alice", "bob"}, added.UserIDs)
	rec.reset()

	// Extending the audience reports only the new target.
	require.NoError(t, s.AddGroupTargets(ctx, g.ID, []string{"bob", "carol"}))
	events = rec.all()
	require.Len(t, events, 1)
	assert.Equal(t, event.GroupTargetsAdded{MessageID: g.ID, UserIDs: []string{"carol"}}, events[0])
	rec.reset()

	// Re-adding existing targets publishes nothing.
	require.NoError(t, s.AddGroupTargets(ctx, g.ID, []string{"alice"}))
	assert.Empty(t, rec.all())

	require.NoError(t, s.MarkGroupMessageReceived(ctx, g.ID, "alice"))
	require.NoError(t, s.MarkGroupMessageReceived(ctx, g.ID, "alice"))
	events = rec.all()
	require.Len(t, events, 1)
	assert.Equal(t, event.GroupMessageRead{MessageID: g.ID, UserID: "alice"}, events[0])
	rec.reset()

	require.NoError(t, s.DeleteGroupMessage(ctx, g.ID))
	events = rec.all()
	require.Len(t, events, 1)
	deleted, ok := events[0].(event.GroupMessageDeleted)
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"bob", "carol"}, deleted.UnreadUserIDs)
}

func TestStore_CreateGroupMessageWithoutTargets(t *testing.T) {
	s, rec := newStore(t)
	ctx := context.Background()

	g, err := s.CreateGroupMessage(ctx, store.GroupMessage{Title: "broadcast later"})
	require.NoError(t, err)
	assert.NotEmpty(t, g.ID)
	assert.Empty(t, rec.all())
}

func TestStore_FailedMutationPublishesNothing(t *testing.T) {
	s, rec := newStore(t)
	ctx := context.Background()

	_, err := s.CreateUserMessage(ctx, store.UserMessage{OwnerID: "ghost"})
	assert.ErrorIs(t, err, store.ErrNotFound)

	err = s.DeleteUser(ctx, "ghost")
	assert.ErrorIs(t, err, store.ErrNotFound)

	assert.Empty(t, rec.all())
}

func TestStore_HandlerErrorPropagates(t *testing.T) {
	bus := event.NewBus()
	bus.Subscribe(event.KindUserCreated, func(context.Context, event.Event) error {
		return assert.AnError
	})
	s := store.New(store.NewMemoryStorage(), bus)

	_, err := s.CreateUser(context.Background(), store.User{ID: "alice"})
	assert.ErrorIs(t, err, assert.AnError)
}
