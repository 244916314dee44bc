// Package blockstate implements the fork-aware tree of cache layers:
// one frozen layer per pending block, a parent/children map forming
// the fork tree, and the operations that open new children, register
// completed layers, finalize a block (collapsing it into the store and
// pruning its orphaned siblings), and walk parent chains on behalf of
// a snapshot handle.
//
// It is grounded on core/state/snapshot.Tree's RWMutex-guarded
// map-of-layers structure, generalized from a single
// parent-chain-per-root-hash model to an explicit parentOf/childrenOf/
// layerOf triple so that sibling pruning is a first-class operation
// rather than an artifact of Cap().
package blockstate

import (
	"context"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/citizen-stig/storage-witness-delta-plaground/internal/cachelayer"
	"github.com/citizen-stig/storage-witness-delta-plaground/internal/metrics"
	"github.com/citizen-stig/storage-witness-delta-plaground/internal/rlog"
	"github.com/citizen-stig/storage-witness-delta-plaground/internal/store"
)

// BId is the opaque block identifier: the core never interprets it
// beyond equality and hashing, both of which a Go string provides for
// free.
type BId = string

// Manager owns the fork tree and the store adapter handle; snapshot
// handles it mints borrow it read-only.
type Manager struct {
	mu sync.RWMutex

	db store.Adapter

	parentOf   map[BId]BId
	childrenOf map[BId][]BId
	layerOf    map[BId]cachelayer.Frozen

	log rlog.Logger
}

// NewManager returns a manager with an empty fork tree over db.
func NewManager(db store.Adapter) *Manager {
	return &Manager{
		db:         db,
		parentOf:   make(map[BId]BId),
		childrenOf: make(map[BId][]BId),
		layerOf:    make(map[BId]cachelayer.Frozen),
		log:        rlog.WithComponent("blockstate"),
	}
}

// Stop marks a clean shutdown. Go's garbage collector reclaims the
// manager/handle cycle on its own, so Stop has no resources to release
// today; it exists as a single place to hook future teardown logic
// (flushing metrics, closing the store) that a driver shutting down
// cleanly should call.
func (m *Manager) Stop() {
	m.log.Info("manager stopped")
}

// OpenChild registers childID as a pending child of parentID and
// returns a Handle the execution engine can use to read through the
// fork tree. The parent need not be known yet — an unknown parent
// behaves as the virtual root, falling straight through to the store.
func (m *Manager) OpenChild(parentID, childID BId) (*Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.parentOf[childID]; exists {
		return nil, fmt.Errorf("open child %q under %q: %w", childID, parentID, ErrDuplicateChild)
	}
	m.parentOf[childID] = parentID
	m.childrenOf[parentID] = append(m.childrenOf[parentID], childID)

	m.log.Debug("opened child", "parent", parentID, "child", childID)
	return &Handle{childID: childID, manager: m}, nil
}

// RegisterLayer records frozen as the completed layer for its block id.
// The block id must already be known (have been passed to OpenChild as
// a child) and must not already have a registered layer.
func (m *Manager) RegisterLayer(frozen cachelayer.Frozen) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	blockID := frozen.BlockID()
	if _, known := m.parentOf[blockID]; !known {
		return fmt.Errorf("register layer for %q: %w", blockID, ErrUnknownBlock)
	}
	if _, already := m.layerOf[blockID]; already {
		return fmt.Errorf("register layer for %q: %w", blockID, ErrDuplicateLayer)
	}
	m.layerOf[blockID] = frozen

	m.log.Debug("registered layer", "block", blockID)
	return nil
}

// Finalize collapses blockID's layer into the store (if one was
// registered) and discards the entire orphaned subtree of its parent's
// other children. A second Finalize of the same id fails with
// ErrUnknownBlock, since the first call already removed it from
// parentOf.
func (m *Manager) Finalize(ctx context.Context, blockID BId) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if frozen, registered := m.layerOf[blockID]; registered {
		delete(m.layerOf, blockID)

		batch := toStoreBatch(frozen.DrainWrites())
		timer := prometheus.NewTimer(metrics.StoreCommitDuration)
		err := m.db.Commit(ctx, batch)
		timer.ObserveDuration()
		if err != nil {
			// The layer is already gone from layerOf: its effects are
			// lost. This is fatal; the driver recovers from outside.
			return fmt.Errorf("finalize %q: %w: %v", blockID, ErrStoreFailure, err)
		}
	} else if _, known := m.parentOf[blockID]; known {
		m.log.Warn("finalizing block with no registered layer", "block", blockID)
	}

	parentID, ok := m.parentOf[blockID]
	if !ok {
		return fmt.Errorf("finalize %q: %w", blockID, ErrUnknownBlock)
	}

	siblings := m.childrenOf[parentID]
	delete(m.childrenOf, parentID)
	delete(m.parentOf, blockID)

	pruned := 0
	for _, sibling := range siblings {
		if sibling == blockID {
			continue
		}
		pruned += m.pruneSubtree(sibling)
	}

	metrics.BlockstateFinalizeTotal.Inc()
	metrics.BlockstatePrunedBlocksTotal.Add(float64(pruned))
	m.log.Info("finalized block", "block", blockID, "pruned_blocks", pruned)
	return nil
}

// pruneSubtree removes root and every descendant of root from all
// three fork-tree mappings using an iterative worklist so pruning
// depth is bounded by heap, not goroutine stack. Since every step is a
// plain in-memory map deletion with no failure path, the walk is
// trivially all-or-nothing.
func (m *Manager) pruneSubtree(root BId) int {
	stack := []BId{root}
	count := 0
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		children := m.childrenOf[cur]
		delete(m.childrenOf, cur)
		delete(m.parentOf, cur)
		delete(m.layerOf, cur)
		count++

		stack = append(stack, children...)
	}
	return count
}

// lookupThroughParents walks upward from the parent of childID through
// the fork tree's registered layers. resolved reports whether
// some ancestor answered authoritatively (a hit or a tombstone); when
// resolved is false the caller must fall through to the store.
func (m *Manager) lookupThroughParents(childID BId, key []byte) (value []byte, resolved bool, tombstone bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	parentID, hasParent := m.parentOf[childID]
	if !hasParent {
		return nil, false, false
	}
	current := parentID
	for {
		frozen, hasLayer := m.layerOf[current]
		if !hasLayer {
			next, hasNextParent := m.parentOf[current]
			if !hasNextParent {
				return nil, false, false
			}
			current = next
			continue
		}
		v, outcome := frozen.Lookup(key)
		switch outcome {
		case cachelayer.Hit:
			return v, true, false
		case cachelayer.Tombstone:
			return nil, true, true
		default: // Miss: keep walking up this layer's own parent chain
			next, hasNextParent := m.parentOf[current]
			if !hasNextParent {
				return nil, false, false
			}
			current = next
		}
	}
}

func toStoreBatch(ops []cachelayer.WriteOp) store.Batch {
	batch := make(store.Batch, len(ops))
	for i, op := range ops {
		batch[i] = store.Write{Key: op.Key, Value: op.Value, Tombstone: op.Tombstone}
	}
	return batch
}
