package blockstate

import "errors"

// Sentinel error kinds the manager returns. All manager failures are
// programmer errors in the driver: the manager does not retry and
// leaves its internal state unchanged on a failing call (StoreFailure
// excepted — by the time Commit runs, the layer has already been
// removed from layerOf, so its effects are genuinely lost on that
// path).
var (
	// ErrDuplicateChild is raised by OpenChild when the child id
	// already has a parent assignment.
	ErrDuplicateChild = errors.New("blockstate: child id already has a parent assignment")

	// ErrUnknownBlock is raised by RegisterLayer and Finalize when the
	// block id is not present in the fork tree's parent map.
	ErrUnknownBlock = errors.New("blockstate: block id not known to the fork tree")

	// ErrDuplicateLayer is raised by RegisterLayer when a layer was
	// already registered for this block id.
	ErrDuplicateLayer = errors.New("blockstate: layer already registered for this block id")

	// ErrMissingParent names fork-tree corruption: a block is known to
	// have a parent pointer but the parent's children set does not list
	// it back. No manager method currently returns it; that state is
	// unreachable through OpenChild/RegisterLayer/Finalize, and Finalize
	// of a block with no parent pointer returns ErrUnknownBlock.
	ErrMissingParent = errors.New("blockstate: fork tree corruption, parent does not list this block as a child")

	// ErrStoreFailure wraps a failed store.Adapter.Commit during
	// finalization. By the time this is raised the finalized layer has
	// already been removed from the tree; the driver must halt and
	// recover from outside.
	ErrStoreFailure = errors.New("blockstate: store commit failed during finalize")
)
