package session

// Entry is one witness record: the key and the value (or absence)
// actually returned to the caller for a read that crossed the current
// layer's boundary.
type Entry struct {
	Key     []byte
	Value   []byte
	Present bool
}

// Witness is the append-only, per-block record of one entry per lookup
// served by a layer above the current one, in first-read order. It
// outlives any single working set — a checkpoint keeps one witness
// across every working set it spawns, truncating it on revert rather
// than replacing it, so earlier transactions' reads are preserved.
type Witness struct {
	entries []Entry
}

func newWitness() *Witness {
	return &Witness{}
}

func (w *Witness) record(key, value []byte, present bool) {
	w.entries = append(w.entries, Entry{Key: key, Value: value, Present: present})
}

func (w *Witness) mark() int {
	return len(w.entries)
}

// truncate discards every entry recorded since mark, restoring the
// witness to the state a reverted working set found it in.
func (w *Witness) truncate(mark int) {
	w.entries = w.entries[:mark]
}

// Len reports how many entries the witness currently holds.
func (w *Witness) Len() int {
	return len(w.entries)
}

// Entries returns the witness's entries in first-read order. The
// returned slice is a copy; callers may not mutate session state
// through it.
func (w *Witness) Entries() []Entry {
	out := make([]Entry, len(w.entries))
	copy(out, w.entries)
	return out
}
