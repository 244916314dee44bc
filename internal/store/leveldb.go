package store

import (
	"context"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/errors"
)

// LevelDB is a store.Adapter backed by goleveldb, the LSM-tree engine
// go-ethereum uses for its own disk layer underneath
// core/state/snapshot.
type LevelDB struct {
	db *leveldb.DB
}

// OpenLevelDB opens (creating if necessary) a goleveldb-backed adapter
// at path.
func OpenLevelDB(path string) (*LevelDB, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("open leveldb store: %w", err)
	}
	return &LevelDB{db: db}, nil
}

func (l *LevelDB) Get(_ context.Context, key []byte) ([]byte, bool, error) {
	v, err := l.db.Get(key, nil)
	if err != nil {
		if err == errors.ErrNotFound {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("leveldb get %x: %w", key, err)
	}
	return v, true, nil
}

// Commit applies the batch via a leveldb.Batch, which leveldb writes
// to the log atomically in one Write call.
func (l *LevelDB) Commit(_ context.Context, batch Batch) error {
	b := new(leveldb.Batch)
	for _, w := range batch {
		if w.Tombstone {
			b.Delete(w.Key)
			continue
		}
		b.Put(w.Key, w.Value)
	}
	if err := l.db.Write(b, nil); err != nil {
		return fmt.Errorf("leveldb commit: %w", err)
	}
	return nil
}

func (l *LevelDB) Close() error { return l.db.Close() }
