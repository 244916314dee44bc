// Package session implements the execution-facing read/write pipeline:
// a Checkpoint wrapping an in-progress cache layer and a snapshot
// handle, convertible to a WorkingSet that buffers one transaction's
// writes separately so they can be reverted without leaving a trace in
// either the layer being built or the witness.
//
// It generalizes the way core/state.StateDB's journal separates
// "reads observed" from "writes pending" during one block's execution
// into an explicit checkpoint/working-set pair.
package session

import (
	"github.com/citizen-stig/storage-witness-delta-plaground/internal/blockstate"
	"github.com/citizen-stig/storage-witness-delta-plaground/internal/cachelayer"
)

// Checkpoint owns the cache layer being built for one block and the
// snapshot handle it reads through. It is produced either fresh (at
// the start of a block's execution) or by committing/reverting a
// WorkingSet.
type Checkpoint struct {
	handle  *blockstate.Handle
	layer   *cachelayer.Layer
	witness *Witness
}

// NewCheckpoint opens a checkpoint over handle, starting with an empty
// in-progress layer and witness.
func NewCheckpoint(handle *blockstate.Handle) *Checkpoint {
	return &Checkpoint{
		handle:  handle,
		layer:   cachelayer.New(),
		witness: newWitness(),
	}
}

// Begin converts the checkpoint into a WorkingSet for one transaction,
// giving it a fresh pending-writes overlay and recording the witness
// length at the start, so a subsequent Revert knows how far to
// truncate.
func (c *Checkpoint) Begin() *WorkingSet {
	return &WorkingSet{
		checkpoint:  c,
		overlay:     cachelayer.New(),
		witnessMark: c.witness.mark(),
	}
}

// Freeze consumes the checkpoint, producing the frozen layer handed to
// the block-state manager's RegisterLayer, plus the witness accumulated
// across every working set this checkpoint spawned.
func (c *Checkpoint) Freeze() (cachelayer.Frozen, Witness) {
	return cachelayer.Freeze(c.handle.BlockID(), c.layer), *c.witness
}
