package directory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelName(t *testing.T) {
	assert.Equal(t, "message_42", ChannelName("42"))
}

func TestMemory_RegisterUnregister(t *testing.T) {
	ctx := context.Background()

	t.Run("register then list", func(t *testing.T) {
		d := NewMemory()
		require.NoError(t, d.Register(ctx, "u1", "c1"))
		require.NoError(t, d.Register(ctx, "u1", "c2"))

		ids, err := d.Connections(ctx, "u1")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"c1", "c2"}, ids)

		ok, err := d.Exists(ctx, "c1")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("unregister removes connection", func(t *testing.T) {
		d := NewMemory()
		require.NoError(t, d.Register(ctx, "u1", "c1"))
		require.NoError(t, d.Unregister(ctx, "u1", "c1"))

		ids, err := d.Connections(ctx, "u1")
		require.NoError(t, err)
		assert.Empty(t, ids)

		ok, err := d.Exists(ctx, "c1")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("entry survives until last connection leaves", func(t *testing.T) {
		d := NewMemory()
		require.NoError(t, d.Register(ctx, "u1", "c1"))
		require.NoError(t, d.Register(ctx, "u1", "c2"))
		require.NoError(t, d.Unregister(ctx, "u1", "c1"))

		ids, err := d.Connections(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, []string{"c2"}, ids)

		require.NoError(t, d.Unregister(ctx, "u1", "c2"))
		assert.Empty(t, d.channels)
	})

	t.Run("unregister is idempotent", func(t *testing.T) {
		d := NewMemory()
		require.NoError(t, d.Unregister(ctx, "u1", "never-registered"))
		require.NoError(t, d.Register(ctx, "u1", "c1"))
		require.NoError(t, d.Unregister(ctx, "u1", "c1"))
		require.NoError(t, d.Unregister(ctx, "u1", "c1"))
	})

	t.Run("users are isolated", func(t *testing.T) {
		d := NewMemory()
		require.NoError(t, d.Register(ctx, "u1", "c1"))
		require.NoError(t, d.Register(ctx, "u2", "c2"))

		ids, err := d.Connections(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, []string{"c1"}, ids)
	})
}

func TestMemory_ConcurrentLifecycles(t *testing.T) {
	ctx := context.Background()
	d := NewMemory()

	const goroutines = 50
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := range goroutines {
		go func(i int) {
			defer wg.Done()
			connID := fmt.Sprintf("c%d", i)
			_ = d.Register(ctx, "u1", connID)
			if i%2 == 0 {
				_ = d.Unregister(ctx, "u1", connID)
			}
		}(i)
	}
	wg.Wait()

	ids, err := d.Connections(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, ids, goroutines/2)
	for _, id := range ids {
		ok, err := d.Exists(ctx, id)
		require.NoError(t, err)
		assert.True(t, ok)
	}
}
