// Package cache keeps per-user browsing state in memory for the lifetime of
// the process, layered over the durable store. Reads populate lazily from
// the store; writes land in the store first and only then mutate memory, so
// the cache can never run ahead of durable truth. Entries are never evicted.
package cache

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/ariesbot/aries/core/logger"
	"github.com/ariesbot/aries/pagination"
	"github.com/ariesbot/aries/storage"
	"log/slog"
)

// Store is the durable backend the cache writes through to.
type Store interface {
	State(ctx context.Context, userID int64, cat pagination.Category) (storage.State, error)
	Update(ctx context.Context, userID int64, cat pagination.Category, changes storage.Changes) error
}

type key struct {
	userID int64
	cat    pagination.Category
}

func (k key) String() string {
	return fmt.Sprintf("%d/%s", k.userID, k.cat)
}

// StateCache is the process-wide write-through cache over the store.
type StateCache struct {
	store Store

	mu      sync.RWMutex
	entries map[key]storage.State

	fill singleflight.Group

	locksMu sync.Mutex
	locks   map[key]*sync.Mutex
}

// New builds an empty cache over the given store.
func New(store Store) *StateCache {
	return &StateCache{
		store:   store,
		entries: make(map[key]storage.State),
		locks:   make(map[key]*sync.Mutex),
	}
}

// Acquire takes the exclusive lock for one (user, category) pair and returns
// its release function. Every read-compute-commit navigation cycle runs
// under this lock so two rapid clicks cannot commit against the same stale
// page.
func (c *StateCache) Acquire(userID int64, cat pagination.Category) func() {
	k := key{userID: userID, cat: cat}

	c.locksMu.Lock()
	mu, ok := c.locks[k]
	if !ok {
		mu = &sync.Mutex{}
		c.locks[k] = mu
	}
	c.locksMu.Unlock()

	mu.Lock()
	return mu.Unlock
}

// Get returns the cached state, populating from the store on first access.
// Concurrent misses for the same key collapse into a single store read.
func (c *StateCache) Get(ctx context.Context, userID int64, cat pagination.Category) (storage.State, error) {
	k := key{userID: userID, cat: cat}

	c.mu.RLock()
	st, ok := c.entries[k]
	c.mu.RUnlock()
	if ok {
		logger.Debug(ctx, "cache.pagination", "get",
			slog.Int64("user_id", userID),
			slog.String("category", string(cat)),
			slog.String("cache", "hit"),
		)
		return st, nil
	}

	// The read is shared by every collapsed waiter, so it must not die
	// with whichever caller happened to win the flight.
	fillCtx := context.WithoutCancel(ctx)
	v, err, _ := c.fill.Do(k.String(), func() (any, error) {
		row, err := c.store.State(fillCtx, userID, cat)
		if err != nil {
			return storage.State{}, err
		}
		c.mu.Lock()
		c.entries[k] = row
		c.mu.Unlock()
		return row, nil
	})
	if err != nil {
		return storage.State{}, err
	}

	logger.Debug(ctx, "cache.pagination", "get",
		slog.Int64("user_id", userID),
		slog.String("category", string(cat)),
		slog.String("cache", "miss"),
	)
	return v.(storage.State), nil
}

// Set writes the change set through to the store and, only on success,
// folds it into the cached copy. The updated snapshot is returned.
func (c *StateCache) Set(ctx context.Context, userID int64, cat pagination.Category, changes storage.Changes) (storage.State, error) {
	st, err := c.Get(ctx, userID, cat)
	if err != nil {
		return storage.State{}, err
	}

	if err := c.store.Update(ctx, userID, cat, changes); err != nil {
		return storage.State{}, err
	}

	st.Apply(changes)
	k := key{userID: userID, cat: cat}
	c.mu.Lock()
	c.entries[k] = st
	c.mu.Unlock()

	logger.Debug(ctx, "cache.pagination", "set",
		slog.Int64("user_id", userID),
		slog.String("category", string(cat)),
	)
	return st, nil
}

// Snapshot copies the currently cached states, keyed by "<user>/<category>".
// Diagnostics only.
func (c *StateCache) Snapshot() map[string]storage.State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]storage.State, len(c.entries))
	for k, v := range c.entries {
		out[k.String()] = v
	}
	return out
}
