// Package store implements the persistent key-value contract the
// block-state manager finalizes layers into: an external collaborator
// specified only by get/commit(batch). This package supplies that
// contract plus three concrete backends.
package store

import "context"

// Write is one entry of a commit batch: a present Value means set, a
// nil Value (with Tombstone true) means delete.
type Write struct {
	Key       []byte
	Value     []byte
	Tombstone bool
}

// Batch is the payload accepted by Commit. It mirrors the drained
// writes of a cache layer.
type Batch []Write

// Adapter is the uniform get/commit surface every backend implements.
// Get must be safe to call concurrently with Commit; Commit itself is
// serialized by the caller (the block-state manager never issues two
// concurrent commits).
type Adapter interface {
	// Get returns the value for key, or (nil, false) if absent.
	Get(ctx context.Context, key []byte) ([]byte, bool, error)

	// Commit applies batch atomically and durably.
	Commit(ctx context.Context, batch Batch) error

	// Close releases any resources (file handles, connections) held
	// by the backend.
	Close() error
}
