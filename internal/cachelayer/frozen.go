package cachelayer

// Frozen is a Layer plus its owning block id, immutable once produced.
// It is a distinct value type from the mutable in-progress Layer;
// conversion only goes one way, and there is deliberately no method
// that turns a Frozen back into a Layer.
type Frozen struct {
	blockID string
	layer   *Layer
}

// Freeze consumes layer, producing an immutable Frozen tagged with
// blockID. The caller must not use layer afterwards.
func Freeze(blockID string, layer *Layer) Frozen {
	return Frozen{blockID: blockID, layer: layer}
}

// BlockID returns the id of the block this layer was produced for.
func (f Frozen) BlockID() string { return f.blockID }

// Lookup answers a read against the frozen layer's own contents only.
func (f Frozen) Lookup(key []byte) (value []byte, outcome Outcome) {
	return f.layer.Lookup(key)
}

// DrainWrites returns the layer's writes as a batch. Frozen layers are
// read-only from the outside, but the manager is the one collaborator
// allowed to drain them when finalizing.
func (f Frozen) DrainWrites() []WriteOp {
	return f.layer.DrainWrites()
}
