// Package lock provides in-process keyed locking for aggregate serialization.
//
// Every mutating operation on an item, transfer or order is serialized per
// affected entity. Operations touching several entities (a transfer
// completion reads and writes two items) acquire all locks in sorted key
// order, so two such operations can never deadlock against each other.
package lock

import (
	"context"
	"sort"
	"sync"
	"time"
)

// DefaultAcquireTimeout bounds how long an operation waits for a contended
// key before giving up. Callers translate the timeout into a retryable
// Busy error.
const DefaultAcquireTimeout = 5 * time.Second

// Keyed is a registry of per-key mutexes.
// Lock entries are created on first use and reference-counted, so the map
// does not grow with the number of keys ever seen.
type Keyed struct {
	mu      sync.Mutex
	entries map[string]*entry
	timeout time.Duration

	// pending tracks outstanding single-key releases for the
	// Acquire/Release convenience pair. Multi-key callers hold the
	// release func returned by AcquireAll directly.
	pending sync.Map
}

type entry struct {
	ch   chan struct{} // buffered(1); full = unlocked
	refs int
}

// NewKeyed creates a keyed lock registry with the default acquire timeout.
func NewKeyed() *Keyed {
	return NewKeyedWithTimeout(DefaultAcquireTimeout)
}

// NewKeyedWithTimeout creates a keyed lock registry with a custom timeout.
func NewKeyedWithTimeout(timeout time.Duration) *Keyed {
	return &Keyed{
		entries: make(map[string]*entry),
		timeout: timeout,
	}
}

func (k *Keyed) acquireEntry(key string) *entry {
	k.mu.Lock()
	defer k.mu.Unlock()
	e, ok := k.entries[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		e.ch <- struct{}{}
		k.entries[key] = e
	}
	e.refs++
	return e
}

func (k *Keyed) releaseEntry(key string, e *entry) {
	k.mu.Lock()
	defer k.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(k.entries, key)
	}
}

// Acquire locks a single key. Returns false if the lock could not be
// acquired before the timeout or the context was cancelled.
func (k *Keyed) Acquire(ctx context.Context, key string) bool {
	release, ok := k.AcquireAll(ctx, []string{key})
	if !ok {
		return false
	}
	k.pending.Store(key, release)
	return true
}

// Release unlocks a key previously locked with Acquire.
func (k *Keyed) Release(key string) {
	if v, ok := k.pending.LoadAndDelete(key); ok {
		v.(func())()
	}
}

// AcquireAll locks all keys in sorted order. On success it returns a
// release function that unlocks in reverse order. On timeout or context
// cancellation it unwinds any locks already taken and returns ok=false.
func (k *Keyed) AcquireAll(ctx context.Context, keys []string) (release func(), ok bool) {
	// Dedupe and sort for a fixed global acquisition order.
	uniq := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		uniq = append(uniq, key)
	}
	sort.Strings(uniq)

	deadline := time.NewTimer(k.timeout)
	defer deadline.Stop()

	type held struct {
		key string
		e   *entry
	}
	taken := make([]held, 0, len(uniq))

	unwind := func() {
		for i := len(taken) - 1; i >= 0; i-- {
			taken[i].e.ch <- struct{}{}
			k.releaseEntry(taken[i].key, taken[i].e)
		}
	}

	for _, key := range uniq {
		e := k.acquireEntry(key)
		select {
		case <-e.ch:
			taken = append(taken, held{key: key, e: e})
		case <-deadline.C:
			k.releaseEntry(key, e)
			unwind()
			return nil, false
		case <-ctx.Done():
			k.releaseEntry(key, e)
			unwind()
			return nil, false
		}
	}

	return unwind, true
}
