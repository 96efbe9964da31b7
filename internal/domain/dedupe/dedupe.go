// Package dedupe tracks the games currently being processed so the same game
// is never queued twice at once.
package dedupe

import (
	"context"
	"fmt"
	"sync"
)

// Deduper records in-flight game ids.
type Deduper interface {
	// Claim marks id as in flight. It fails with ErrInFlight if id is already
	// claimed and with ErrFull if the tracker is at capacity.
	Claim(ctx context.Context, id string) error

	// Release frees id once its job has finished or could not be queued.
	// Releasing an unclaimed id is a no-op.
	Release(ctx context.Context, id string)

	// InFlight reports whether id is claimed.
	InFlight(ctx context.Context, id string) bool

	Size() int64
}

// inMemoryDeduper implements Deduper with a mutex-guarded set.
// For bounded mode (maxSize > 0): claims beyond maxSize are refused.
// For unbounded mode (maxSize <= 0): no size limit.
type inMemoryDeduper struct {
	mu      sync.Mutex
	claimed map[string]struct{}
	maxSize int
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: 10_000,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.claimed = make(map[string]struct{})
	return d
}

// Claim marks id as in flight.
func (d *inMemoryDeduper) Claim(_ context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.claimed[id]; exists {
		return fmt.Errorf("%w: %s", ErrInFlight, id)
	}
	// Claims are never evicted: dropping one would let a duplicate in.
	if d.maxSize > 0 && len(d.claimed) >= d.maxSize {
		return fmt.Errorf("%w: %d games in flight", ErrFull, len(d.claimed))
	}
	d.claimed[id] = struct{}{}
	return nil
}

// Release frees id.
func (d *inMemoryDeduper) Release(_ context.Context, id string) {
	d.mu.Lock()
	delete(d.claimed, id)
	d.mu.Unlock()
}

// InFlight reports whether id is claimed.
func (d *inMemoryDeduper) InFlight(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.claimed[id]
	return ok
}

// Size returns the current number of claimed ids.
func (d *inMemoryDeduper) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(len(d.claimed))
}
