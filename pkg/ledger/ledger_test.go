package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aDramaQueen/messenger/pkg/wire"
)

type fakePusher struct {
	mu     sync.Mutex
	pushes []wire.DTO
	users  []string
	err    error
}

func (p *fakePusher) Push(ctx context.Context, userID string, dto wire.DTO) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.users = append(p.users, userID)
	p.pushes = append(p.pushes, dto)
	return nil
}

func (p *fakePusher) last(t *testing.T) wire.DTO {
	t.Helper()
	p.mu.Lock()
	defer p.mu.Unlock()
	require.NotEmpty(t, p.pushes)
	return p.pushes[len(p.pushes)-1]
}

func (p *fakePusher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pushes)
}

type fakeSource struct {
	userMsgs  int
	groupMsgs int
}

func (s *fakeSource) UnreadUserMessageCount(ctx context.Context, userID string) (int, error) {
	return s.userMsgs, nil
}

func (s *fakeSource) UnreadGroupMessageCount(ctx context.Context, userID string) (int, error) {
	return s.groupMsgs, nil
}

func TestLedger_IncrementPushes(t *testing.T) {
	ctx := context.Background()
	pusher := &fakePusher{}
	l := New(NewMemoryStorage(), WithPusher(pusher))

	require.NoError(t, l.CreateRecord(ctx, "u1"))
	assert.Equal(t, 0, pusher.count(), "record creation must not push")

	require.NoError(t, l.Increment(ctx, "u1"))
	assert.Equal(t, wire.NotificationDTO{UnreadMessages: 1}, pusher.last(t))
	assert.Equal(t, []string{"u1"}, pusher.users)

	require.NoError(t, l.Increment(ctx, "u1"))
	assert.Equal(t, wire.NotificationDTO{UnreadMessages: 2}, pusher.last(t))
}

func TestLedger_DecrementPushesAndFloors(t *testing.T) {
	ctx := context.Background()
	pusher := &fakePusher{}
	l := New(NewMemoryStorage(), WithPusher(pusher))

	require.NoError(t, l.CreateRecord(ctx, "u1"))
	require.NoError(t, l.Increment(ctx, "u1"))

	require.NoError(t, l.Decrement(ctx, "u1"))
	assert.Equal(t, wire.NotificationDTO{UnreadMessages: 0}, pusher.last(t))

	// Decrementing at zero stays at zero.
	require.NoError(t, l.Decrement(ctx, "u1"))
	assert.Equal(t, wire.NotificationDTO{UnreadMessages: 0}, pusher.last(t))

	n, err := l.Unread(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestLedger_PushFailureDoesNotFailMutation(t *testing.T) {
	ctx := context.Background()
	pusher := &fakePusher{err: errors.New("transport down")}
	l := New(NewMemoryStorage(), WithPusher(pusher))

	require.NoError(t, l.CreateRecord(ctx, "u1"))
	require.NoError(t, l.Increment(ctx, "u1"), "delivery failure must not abort the mutation")

	n, err := l.Unread(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, n, "counter change must be durable regardless of delivery")
}

func TestLedger_Reset(t *testing.T) {
	ctx := context.Background()
	pusher := &fakePusher{}
	source := &fakeSource{userMsgs: 2, groupMsgs: 3}
	l := New(NewMemoryStorage(), WithPusher(pusher), WithUnreadSource(source))

	require.NoError(t, l.CreateRecord(ctx, "u1"))
	for range 10 {
		require.NoError(t, l.Increment(ctx, "u1"))
	}
	pushed := pusher.count()

	require.NoError(t, l.Reset(ctx, "u1"))

	n, err := l.Unread(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 5, n, "reset must equal unread user + group messages")
	assert.Equal(t, pushed, pusher.count(), "reset must not push")
}

func TestLedger_ResetWithoutSource(t *testing.T) {
	l := New(NewMemoryStorage())
	require.NoError(t, l.CreateRecord(context.Background(), "u1"))
	assert.Error(t, l.Reset(context.Background(), "u1"))
}

func TestLedger_Clear(t *testing.T) {
	ctx := context.Background()
	pusher := &fakePusher{}
	l := New(NewMemoryStorage(), WithPusher(pusher))

	require.NoError(t, l.CreateRecord(ctx, "u1"))
	require.NoError(t, l.Increment(ctx, "u1"))
	pushed := pusher.count()

	require.NoError(t, l.Clear(ctx, "u1"))

	n, err := l.Unread(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, pushed, pusher.count(), "clear must not push")
}

func TestLedger_ConcurrentIncrements(t *testing.T) {
	ctx := context.Background()
	l := New(NewMemoryStorage(), WithPusher(&fakePusher{}))
	require.NoError(t, l.CreateRecord(ctx, "u1"))

	const k = 64
	var wg sync.WaitGroup
	wg.Add(k)
	for range k {
		go func() {
			defer wg.Done()
			assert.NoError(t, l.Increment(ctx, "u1"))
		}()
	}
	wg.Wait()

	n, err := l.Unread(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, k, n)
}

func TestLedger_DeleteRecord(t *testing.T) {
	ctx := context.Background()
	l := New(NewMemoryStorage())

	require.NoError(t, l.CreateRecord(ctx, "u1"))
	require.NoError(t, l.DeleteRecord(ctx, "u1"))

	_, err := l.Unread(ctx, "u1")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}
