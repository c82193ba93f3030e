package ledger

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorage_Lifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("create starts at zero", func(t *testing.T) {
		s := NewMemoryStorage()
		require.NoError(t, s.Create(ctx, "u1"))

		n, err := s.Get(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, 0, n)
	})

	t.Run("create is idempotent", func(t *testing.T) {
		s := NewMemoryStorage()
		require.NoError(t, s.Create(ctx, "u1"))
		_, err := s.Increment(ctx, "u1")
		require.NoError(t, err)

		require.NoError(t, s.Create(ctx, "u1"))
		n, err := s.Get(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, 1, n, "re-create must not reset the counter")
	})

	t.Run("delete removes record", func(t *testing.T) {
		s := NewMemoryStorage()
		require.NoError(t, s.Create(ctx, "u1"))
		require.NoError(t, s.Delete(ctx, "u1"))

		_, err := s.Get(ctx, "u1")
		assert.ErrorIs(t, err, ErrRecordNotFound)
	})

	t.Run("mutating a missing record fails", func(t *testing.T) {
		s := NewMemoryStorage()
		_, err := s.Increment(ctx, "ghost")
		assert.ErrorIs(t, err, ErrRecordNotFound)
		_, err = s.Decrement(ctx, "ghost")
		assert.ErrorIs(t, err, ErrRecordNotFound)
		assert.ErrorIs(t, s.Set(ctx, "ghost", 3), ErrRecordNotFound)
	})
}

func TestMemoryStorage_DecrementFloor(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()
	require.NoError(t, s.Create(ctx, "u1"))

	for range 5 {
		n, err := s.Decrement(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, 0, n, "counter must never go negative")
	}
}

func TestMemoryStorage_ConcurrentIncrements(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()
	require.NoError(t, s.Create(ctx, "u1"))

	const k = 100
	var wg sync.WaitGroup
	wg.Add(k)
	for range k {
		go func() {
			defer wg.Done()
			_, err := s.Increment(ctx, "u1")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	n, err := s.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, k, n, "no concurrent increment may be lost")
}

func TestMemoryStorage_SetClampsNegative(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()
	require.NoError(t, s.Create(ctx, "u1"))

	require.NoError(t, s.Set(ctx, "u1", -4))
	n, err := s.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
