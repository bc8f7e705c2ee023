package repository

import (
	"context"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	boltBucket = []byte("postbox")
	boltKey    = []byte("posts")
)

// BoltBlobStore keeps the document under a single key of a Bolt database.
type BoltBlobStore struct {
	db *bolt.DB
}

func NewBoltBlobStore(path string) (*BoltBlobStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("could not open bolt database %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(boltBucket); err != nil {
			return fmt.Errorf("could not ensure bucket %q exists: %w", boltBucket, err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltBlobStore{db: db}, nil
}

func (s *BoltBlobStore) Load(ctx context.Context) (value []byte, err error) {
	err = s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(boltBucket).Get(boltKey)
		if v == nil {
			return ErrBlobNotFound
		}
		// v is only valid inside the transaction.
		value = append([]byte(nil), v...)
		return nil
	})
	return value, err
}

func (s *BoltBlobStore) Save(ctx context.Context, data []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(boltBucket).Put(boltKey, data); err != nil {
			return fmt.Errorf("could not put %q: %w", boltKey, err)
		}
		return nil
	})
}

func (s *BoltBlobStore) Close() error {
	return s.db.Close()
}
