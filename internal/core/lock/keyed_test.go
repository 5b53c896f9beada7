package lock

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquire_SerializesSameKey(t *testing.T) {
	k := NewKeyed()
	ctx := context.Background()

	var counter int
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			require.True(t, k.Acquire(ctx, "item-1"))
			defer k.Release("item-1")
			counter++
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, counter)
}

func TestAcquire_DifferentKeysDoNotBlock(t *testing.T) {
	k := NewKeyed()
	ctx := context.Background()

	require.True(t, k.Acquire(ctx, "item-1"))
	defer k.Release("item-1")

	done := make(chan struct{})
	go func() {
		defer close(done)
		require.True(t, k.Acquire(ctx, "item-2"))
		k.Release("item-2")
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("independent key blocked behind held lock")
	}
}

func TestAcquire_TimesOutOnContention(t *testing.T) {
	k := NewKeyedWithTimeout(50 * time.Millisecond)
	ctx := context.Background()

	require.True(t, k.Acquire(ctx, "item-1"))
	defer k.Release("item-1")

	start := time.Now()
	assert.False(t, k.Acquire(ctx, "item-1"))
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestAcquire_ContextCancellation(t *testing.T) {
	k := NewKeyed()

	require.True(t, k.Acquire(context.Background(), "item-1"))
	defer k.Release("item-1")

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	assert.False(t, k.Acquire(ctx, "item-1"))
}

func TestAcquireAll_UnwindsOnTimeout(t *testing.T) {
	k := NewKeyedWithTimeout(50 * time.Millisecond)
	ctx := context.Background()

	// Hold b so the batch {a, b} cannot complete.
	require.True(t, k.Acquire(ctx, "b"))

	_, ok := k.AcquireAll(ctx, []string{"a", "b"})
	assert.False(t, ok)

	// a must have been released during unwind.
	release, ok := k.AcquireAll(ctx, []string{"a"})
	require.True(t, ok)
	release()

	k.Release("b")
}

func TestAcquireAll_DedupesKeys(t *testing.T) {
	k := NewKeyed()

	// Same key twice in one batch must not self-deadlock.
	release, ok := k.AcquireAll(context.Background(), []string{"a", "a", "a"})
	require.True(t, ok)
	release()
}

func TestAcquireAll_SortedOrderPreventsDeadlock(t *testing.T) {
	k := NewKeyed()
	ctx := context.Background()

	// Opposite declaration orders; sorted acquisition makes them safe.
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		keys := []string{"a", "b"}
		if i%2 == 1 {
			keys = []string{"b", "a"}
		}
		wg.Add(1)
		go func(keys []string) {
			defer wg.Done()
			release, ok := k.AcquireAll(ctx, keys)
			require.True(t, ok)
			time.Sleep(time.Microsecond)
			release()
		}(keys)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("deadlock between opposite-order batches")
	}
}

func TestKeyed_EntriesDoNotLeak(t *testing.T) {
	k := NewKeyed()
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		require.True(t, k.Acquire(ctx, "key"))
		k.Release("key")
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	assert.Empty(t, k.entries)
}
