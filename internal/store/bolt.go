package store

import (
	"context"
	"fmt"

	bolt "go.etcd.io/bbolt"
)

var bucketName = []byte("state")

// Bolt is a store.Adapter backed by a single-file bbolt database.
// Grounded on cuemby-warren's pkg/storage.BoltStore: one bucket per
// concern there, one bucket here since the contract is a flat
// byte-keyed map rather than a typed collection store.
type Bolt struct {
	db *bolt.DB
}

// OpenBolt opens (creating if necessary) a bbolt-backed adapter at path.
func OpenBolt(path string) (*Bolt, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("open bolt store: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create bolt bucket: %w", err)
	}
	return &Bolt{db: db}, nil
}

func (b *Bolt) Get(_ context.Context, key []byte) ([]byte, bool, error) {
	var out []byte
	err := b.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketName).Get(key)
		if v == nil {
			return nil
		}
		out = make([]byte, len(v))
		copy(out, v)
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return out, out != nil, nil
}

// Commit applies the batch inside a single bolt.Tx, giving it the
// all-or-nothing atomicity the Adapter contract requires of Commit.
func (b *Bolt) Commit(_ context.Context, batch Batch) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(bucketName)
		for _, w := range batch {
			if w.Tombstone {
				if err := bkt.Delete(w.Key); err != nil {
					return fmt.Errorf("delete %x: %w", w.Key, err)
				}
				continue
			}
			if err := bkt.Put(w.Key, w.Value); err != nil {
				return fmt.Errorf("put %x: %w", w.Key, err)
			}
		}
		return nil
	})
}

func (b *Bolt) Close() error { return b.db.Close() }
