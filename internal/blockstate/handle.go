package blockstate

import "context"

// Handle is a snapshot handle: a capability bound to one pending child
// block, able to read through its ancestors but unable to write
// anything or reach the manager's mutating methods. The manager/handle
// reference is a plain pointer — the garbage collector reclaims the
// cycle on its own — so the read-only contract is enforced purely by
// Handle's method set (Get and BlockID, nothing that mutates the tree)
// rather than by how the
// back-reference is represented.
type Handle struct {
	childID BId
	manager *Manager
}

// Get resolves key by walking upward from this handle's block through
// the fork tree and, if no ancestor answers, falling through to the
// persistent store.
func (h *Handle) Get(ctx context.Context, key []byte) (value []byte, found bool, err error) {
	v, resolved, tombstone := h.manager.lookupThroughParents(h.childID, key)
	if resolved {
		if tombstone {
			return nil, false, nil
		}
		return v, true, nil
	}
	return h.manager.db.Get(ctx, key)
}

// BlockID returns the child block id this handle is anchored to.
func (h *Handle) BlockID() BId { return h.childID }
