package blockstate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/citizen-stig/storage-witness-delta-plaground/internal/cachelayer"
	"github.com/citizen-stig/storage-witness-delta-plaground/internal/store"
)

// writeBlock opens a child under parent, writes the given key/values
// straight into its layer (standing in for a state-transition function
// driving a working set — internal/session covers that path directly)
// and registers the frozen result.
func writeBlock(t *testing.T, m *Manager, parent, child BId, kv map[string]string) cachelayer.Frozen {
	t.Helper()
	_, err := m.OpenChild(parent, child)
	require.NoError(t, err)

	layer := cachelayer.New()
	for k, v := range kv {
		layer.RecordWrite([]byte(k), []byte(v), true)
	}
	frozen := cachelayer.Freeze(child, layer)
	require.NoError(t, m.RegisterLayer(frozen))
	return frozen
}

func TestS1LinearProgressionWithTwoBlockDelay(t *testing.T) {
	ctx := context.Background()
	db := store.NewMemory()
	m := NewManager(db)

	writeBlock(t, m, "genesis", "A", map[string]string{"x": "1", "y": "2"})

	handleB, err := m.OpenChild("A", "B")
	require.NoError(t, err)
	v, found, err := handleB.Get(ctx, []byte("x"))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("1"), v)

	layerB := cachelayer.New()
	layerB.RecordRead([]byte("x"), []byte("1"), true)
	layerB.RecordWrite([]byte("x"), []byte("3"), true)
	layerB.RecordWrite([]byte("z"), []byte("4"), true)
	require.NoError(t, m.RegisterLayer(cachelayer.Freeze("B", layerB)))

	require.NoError(t, m.Finalize(ctx, "A"))
	v, found, _ = db.Get(ctx, []byte("x"))
	require.True(t, found)
	require.Equal(t, []byte("1"), v)
	v, found, _ = db.Get(ctx, []byte("y"))
	require.True(t, found)
	require.Equal(t, []byte("2"), v)
	_, found, _ = db.Get(ctx, []byte("z"))
	require.False(t, found)

	writeBlock(t, m, "B", "C", map[string]string{"x": "5", "z": "6"})

	require.NoError(t, m.Finalize(ctx, "B"))
	v, _, _ = db.Get(ctx, []byte("x"))
	require.Equal(t, []byte("3"), v)
	v, _, _ = db.Get(ctx, []byte("y"))
	require.Equal(t, []byte("2"), v)
	v, _, _ = db.Get(ctx, []byte("z"))
	require.Equal(t, []byte("4"), v)

	require.NoError(t, m.Finalize(ctx, "C"))
	v, _, _ = db.Get(ctx, []byte("x"))
	require.Equal(t, []byte("5"), v)
	v, _, _ = db.Get(ctx, []byte("y"))
	require.Equal(t, []byte("2"), v)
	v, _, _ = db.Get(ctx, []byte("z"))
	require.Equal(t, []byte("6"), v)

	require.Empty(t, m.parentOf)
	require.Empty(t, m.childrenOf)
	require.Empty(t, m.layerOf)
}

func TestS2ForkAndPrune(t *testing.T) {
	ctx := context.Background()
	db := store.NewMemory()
	m := NewManager(db)

	writeBlock(t, m, "genesis", "P", map[string]string{})
	writeBlock(t, m, "P", "Q", map[string]string{"a": "1"})
	writeBlock(t, m, "P", "R", map[string]string{"a": "2", "b": "3"})
	writeBlock(t, m, "R", "Rprime", map[string]string{"c": "4"})

	require.NoError(t, m.Finalize(ctx, "Q"))

	v, found, _ := db.Get(ctx, []byte("a"))
	require.True(t, found)
	require.Equal(t, []byte("1"), v)
	_, found, _ = db.Get(ctx, []byte("b"))
	require.False(t, found)

	for _, gone := range []BId{"R", "Rprime"} {
		_, ok := m.parentOf[gone]
		require.False(t, ok, "%s should be pruned from parentOf", gone)
		_, ok = m.layerOf[gone]
		require.False(t, ok, "%s should be pruned from layerOf", gone)
	}
	_, ok := m.childrenOf["P"]
	require.False(t, ok)
}

func TestS3ChildHandleReadsParentWrite(t *testing.T) {
	// internal/session owns revert semantics and covers scenario S3 in
	// full. Here we only assert the manager-facing part of its setup:
	// a handle for B, opened under A, reads A's registered x=1.
	ctx := context.Background()
	db := store.NewMemory()
	m := NewManager(db)

	writeBlock(t, m, "genesis", "A", map[string]string{"x": "1"})

	handle, err := m.OpenChild("A", "B")
	require.NoError(t, err)
	v, found, err := handle.Get(ctx, []byte("x"))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("1"), v)
}

func TestS4DeleteVisibility(t *testing.T) {
	ctx := context.Background()
	db := store.NewMemory()
	m := NewManager(db)

	writeBlock(t, m, "genesis", "A", map[string]string{"k": "1"})
	require.NoError(t, m.Finalize(ctx, "A"))

	layerB := cachelayer.New()
	layerB.RecordWrite([]byte("k"), nil, false)
	_, err := m.OpenChild("A", "B")
	require.NoError(t, err)
	require.NoError(t, m.RegisterLayer(cachelayer.Freeze("B", layerB)))

	handleC, err := m.OpenChild("B", "C")
	require.NoError(t, err)
	_, found, err := handleC.Get(ctx, []byte("k"))
	require.NoError(t, err)
	require.False(t, found)
}

func TestS5DuplicateChildRejected(t *testing.T) {
	m := NewManager(store.NewMemory())
	_, err := m.OpenChild("P", "C")
	require.NoError(t, err)

	_, err = m.OpenChild("P", "C")
	require.ErrorIs(t, err, ErrDuplicateChild)

	require.Len(t, m.childrenOf["P"], 1)
}

func TestS6FinalizeThenReFinalize(t *testing.T) {
	ctx := context.Background()
	m := NewManager(store.NewMemory())
	writeBlock(t, m, "genesis", "A", map[string]string{"k": "1"})

	require.NoError(t, m.Finalize(ctx, "A"))
	err := m.Finalize(ctx, "A")
	require.ErrorIs(t, err, ErrUnknownBlock)
}

func TestRegisterLayerUnknownBlock(t *testing.T) {
	m := NewManager(store.NewMemory())
	err := m.RegisterLayer(cachelayer.Freeze("ghost", cachelayer.New()))
	require.ErrorIs(t, err, ErrUnknownBlock)
}

func TestRegisterLayerDuplicate(t *testing.T) {
	m := NewManager(store.NewMemory())
	_, err := m.OpenChild("genesis", "A")
	require.NoError(t, err)

	require.NoError(t, m.RegisterLayer(cachelayer.Freeze("A", cachelayer.New())))
	err = m.RegisterLayer(cachelayer.Freeze("A", cachelayer.New()))
	require.ErrorIs(t, err, ErrDuplicateLayer)
}

func TestFinalizeUnregisteredBlockPrunesButCommitsNothing(t *testing.T) {
	ctx := context.Background()
	db := store.NewMemory()
	m := NewManager(db)

	_, err := m.OpenChild("genesis", "A")
	require.NoError(t, err)

	require.NoError(t, m.Finalize(ctx, "A"))
	require.Equal(t, 0, db.Len())
}

func TestGetThroughUnknownParentFallsThroughToStore(t *testing.T) {
	ctx := context.Background()
	db := store.NewMemory()
	require.NoError(t, db.Commit(ctx, store.Batch{{Key: []byte("k"), Value: []byte("root-value")}}))

	m := NewManager(db)
	handle, err := m.OpenChild("genesis", "A")
	require.NoError(t, err)

	v, found, err := handle.Get(ctx, []byte("k"))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("root-value"), v)
}
