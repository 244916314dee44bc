package cachelayer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRecordReadFirstReadWins(t *testing.T) {
	l := New()
	require.NoError(t, l.RecordRead([]byte("k"), []byte("v1"), true))
	// Same value again: no-op, not an error.
	require.NoError(t, l.RecordRead([]byte("k"), []byte("v1"), true))

	v, outcome := l.Lookup([]byte("k"))
	require.Equal(t, Hit, outcome)
	require.Equal(t, []byte("v1"), v)
}

func TestRecordReadInconsistentValue(t *testing.T) {
	l := New()
	require.NoError(t, l.RecordRead([]byte("k"), []byte("v1"), true))

	err := l.RecordRead([]byte("k"), []byte("v2"), true)
	require.Error(t, err)
	var inconsistent *InconsistentReadError
	require.ErrorAs(t, err, &inconsistent)
}

func TestRecordWriteShadowsRead(t *testing.T) {
	l := New()
	require.NoError(t, l.RecordRead([]byte("k"), []byte("old"), true))
	l.RecordWrite([]byte("k"), []byte("new"), true)

	v, outcome := l.Lookup([]byte("k"))
	require.Equal(t, Hit, outcome)
	require.Equal(t, []byte("new"), v)

	// A read recorded after the write must not override it, and must
	// not error either: RecordRead is a no-op once a key is shadowed
	// by a write.
	require.NoError(t, l.RecordRead([]byte("k"), []byte("whatever"), true))
	v, outcome = l.Lookup([]byte("k"))
	require.Equal(t, Hit, outcome)
	require.Equal(t, []byte("new"), v)
}

func TestRecordWriteLastWriteWins(t *testing.T) {
	l := New()
	l.RecordWrite([]byte("k"), []byte("v1"), true)
	l.RecordWrite([]byte("k"), nil, false) // delete
	l.RecordWrite([]byte("k"), []byte("v3"), true)

	v, outcome := l.Lookup([]byte("k"))
	require.Equal(t, Hit, outcome)
	require.Equal(t, []byte("v3"), v)
}

func TestLookupMiss(t *testing.T) {
	l := New()
	_, outcome := l.Lookup([]byte("unknown"))
	require.Equal(t, Miss, outcome)
}

func TestLookupTombstone(t *testing.T) {
	l := New()
	l.RecordWrite([]byte("k"), nil, false)
	_, outcome := l.Lookup([]byte("k"))
	require.Equal(t, Tombstone, outcome)
}

func TestDrainWritesOmitsReads(t *testing.T) {
	l := New()
	require.NoError(t, l.RecordRead([]byte("r"), []byte("rv"), true))
	l.RecordWrite([]byte("w1"), []byte("v1"), true)
	l.RecordWrite([]byte("w2"), nil, false)

	ops := l.DrainWrites()
	require.Len(t, ops, 2)

	byKey := make(map[string]WriteOp)
	for _, op := range ops {
		byKey[string(op.Key)] = op
	}
	require.Equal(t, []byte("v1"), byKey["w1"].Value)
	require.False(t, byKey["w1"].Tombstone)
	require.True(t, byKey["w2"].Tombstone)
	_, hasRead := byKey["r"]
	require.False(t, hasRead)
}

func TestFreezeIsOneWay(t *testing.T) {
	l := New()
	l.RecordWrite([]byte("k"), []byte("v"), true)

	f := Freeze("block-a", l)
	require.Equal(t, "block-a", f.BlockID())

	v, outcome := f.Lookup([]byte("k"))
	require.Equal(t, Hit, outcome)
	require.Equal(t, []byte("v"), v)
}
