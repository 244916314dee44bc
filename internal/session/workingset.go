package session

import (
	"context"

	"github.com/citizen-stig/storage-witness-delta-plaground/internal/cachelayer"
	"github.com/citizen-stig/storage-witness-delta-plaground/internal/metrics"
)

// WorkingSet is a checkpoint plus a revertible pending-writes overlay
// for one transaction's effects. Set/Delete only ever touch the
// overlay; Commit folds it into the checkpoint's layer, Revert
// discards it untouched.
type WorkingSet struct {
	checkpoint  *Checkpoint
	overlay     *cachelayer.Layer
	witnessMark int
	newReads    [][]byte
}

// Get resolves key through, in order: the pending overlay, the
// checkpoint's in-progress layer, and then the snapshot handle (which
// itself falls through to the persistent store if no ancestor answers).
// Only the outcome of that last, boundary-crossing step is recorded
// into the witness and cached into the checkpoint layer's reads. Since
// the checkpoint layer lookup above already came back Miss, this key
// cannot already be present there, so it is always a fresh insertion —
// one Revert must be able to undo.
func (ws *WorkingSet) Get(ctx context.Context, key []byte) ([]byte, bool, error) {
	if v, outcome := ws.overlay.Lookup(key); outcome != cachelayer.Miss {
		return decodeOutcome(v, outcome)
	}
	if v, outcome := ws.checkpoint.layer.Lookup(key); outcome != cachelayer.Miss {
		return decodeOutcome(v, outcome)
	}

	v, found, err := ws.checkpoint.handle.Get(ctx, key)
	if err != nil {
		return nil, false, err
	}
	ws.checkpoint.witness.record(key, v, found)
	metrics.SessionWitnessEntriesTotal.Inc()
	if err := ws.checkpoint.layer.RecordRead(key, v, found); err != nil {
		return nil, false, err
	}
	ws.newReads = append(ws.newReads, key)
	return v, found, nil
}

func decodeOutcome(v []byte, outcome cachelayer.Outcome) ([]byte, bool, error) {
	if outcome == cachelayer.Tombstone {
		return nil, false, nil
	}
	return v, true, nil
}

// Set buffers a write in the pending overlay only, not the checkpoint's
// layer — this is what makes Revert possible. Writes are never
// witnessed.
func (ws *WorkingSet) Set(key, value []byte) {
	ws.overlay.RecordWrite(key, value, true)
}

// Delete buffers a tombstone in the pending overlay.
func (ws *WorkingSet) Delete(key []byte) {
	ws.overlay.RecordWrite(key, nil, false)
}

// Commit folds the pending overlay into the checkpoint's layer via
// RecordWrite for each entry, preserving last-write-wins semantics, and
// returns the checkpoint. The next working set built from it will see
// these writes as part of the layer.
func (ws *WorkingSet) Commit() *Checkpoint {
	for _, op := range ws.overlay.DrainWrites() {
		ws.checkpoint.layer.RecordWrite(op.Key, op.Value, !op.Tombstone)
	}
	return ws.checkpoint
}

// Revert discards the pending overlay, forgets every read this working
// set caused to cross into the checkpoint's layer, and rewinds the
// witness to the length it had when this working set began — leaving
// no trace of the transaction in either the layer being built or the
// witness.
func (ws *WorkingSet) Revert() *Checkpoint {
	for _, key := range ws.newReads {
		ws.checkpoint.layer.ForgetRead(key)
	}
	ws.checkpoint.witness.truncate(ws.witnessMark)
	return ws.checkpoint
}
