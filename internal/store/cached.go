package store

import (
	"context"

	lru "github.com/hashicorp/golang-lru"

	"github.com/citizen-stig/storage-witness-delta-plaground/internal/metrics"
)

// Cached wraps an Adapter with an LRU read cache, recording hit/miss
// counts through internal/metrics the way ethdb/relaydb tracks
// db.hits/db.misses on every Get, and the way core/state/snapshot's
// diskLayer keeps a clean-read cache in front of the real disk
// backend.
type Cached struct {
	next  Adapter
	cache *lru.Cache
}

// NewCached wraps next with an LRU of the given size. A non-positive
// size is treated as 1; caching is never disabled.
func NewCached(next Adapter, size int) (*Cached, error) {
	if size <= 0 {
		size = 1
	}
	c, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &Cached{next: next, cache: c}, nil
}

func (c *Cached) Get(ctx context.Context, key []byte) ([]byte, bool, error) {
	if v, ok := c.cache.Get(string(key)); ok {
		metrics.StoreGetTotal.WithLabelValues("hit").Inc()
		if v == nil {
			return nil, false, nil
		}
		return v.([]byte), true, nil
	}
	metrics.StoreGetTotal.WithLabelValues("miss").Inc()

	value, found, err := c.next.Get(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if found {
		c.cache.Add(string(key), value)
	} else {
		c.cache.Add(string(key), nil)
	}
	return value, found, nil
}

// Commit applies the batch to the underlying adapter and updates the
// cache with the new values, so a write is immediately visible to a
// following Get without another round trip to the backend.
func (c *Cached) Commit(ctx context.Context, batch Batch) error {
	if err := c.next.Commit(ctx, batch); err != nil {
		return err
	}
	for _, w := range batch {
		if w.Tombstone {
			c.cache.Add(string(w.Key), nil)
			continue
		}
		c.cache.Add(string(w.Key), w.Value)
	}
	return nil
}

func (c *Cached) Close() error { return c.next.Close() }
