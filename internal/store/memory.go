package store

import (
	"context"
	"sync"
)

// Memory is an in-process Adapter backed by a map, guarded by a mutex
// the way the original prototype's Database (db.rs) guards its HashMap
// with an external Mutex. It is the backend cmd/rollupctl's demo
// subcommand uses and the one every blockstate/session test is written
// against.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, key []byte) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[string(key)]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (m *Memory) Commit(_ context.Context, batch Batch) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, w := range batch {
		if w.Tombstone {
			delete(m.data, string(w.Key))
			continue
		}
		v := make([]byte, len(w.Value))
		copy(v, w.Value)
		m.data[string(w.Key)] = v
	}
	return nil
}

func (m *Memory) Close() error { return nil }

// Len reports how many live keys the store holds. Test-only helper,
// mirrors the prototype tests reaching into db.data directly.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
