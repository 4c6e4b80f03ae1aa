// Package boltstore implements collab.HeadStore and collab.ProducerStore
// on top of a single embedded go.etcd.io/bbolt database file: one
// bucket holding the trusted head under a fixed key, and one bucket
// mapping epoch id to its producer set, both encoded with package
// borsh rather than JSON.
package boltstore

import (
	"context"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/near/lightclientd/borsh"
	"github.com/near/lightclientd/collab"
	"github.com/near/lightclientd/header"
)

var (
	bucketHead      = []byte("head")
	bucketProducers = []byte("producers")
	headKey         = []byte("head")
)

// maxProducers is the protocol's bound on a single epoch's producer
// set, enforced on every Put.
const maxProducers = 1024

// Store opens one bbolt file and serves both collab.HeadStore and
// collab.ProducerStore from it.
type Store struct {
	db *bolt.DB
}

// Open creates (if needed) and opens the bbolt database at path,
// creating both buckets up front inside a single write transaction.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("boltstore: open %s: %w", path, err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{bucketHead, bucketProducers} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("create bucket %s: %w", string(b), err)
			}
		}
		return nil
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the underlying file and its advisory lock.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Get implements collab.HeadStore. It returns collab.ErrNotFound when
// no head has ever been written (the bootstrap case).
func (s *Store) Get(ctx context.Context) (header.LightClientBlockLiteView, error) {
	var view header.LightClientBlockLiteView
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketHead).Get(headKey)
		if raw == nil {
			return collab.ErrNotFound
		}
		r := borsh.NewReader(raw)
		decoded, err := header.ReadLightClientBlockLiteViewBorsh(r)
		if err != nil {
			return fmt.Errorf("boltstore: decode head: %w", err)
		}
		view = decoded
		return nil
	})
	return view, err
}

// Put implements collab.HeadStore.
func (s *Store) Put(ctx context.Context, head header.LightClientBlockLiteView) error {
	w := borsh.NewWriter()
	head.WriteBorsh(w)
	encoded := w.Bytes()
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketHead).Put(headKey, encoded)
	})
}

// Get implements collab.ProducerStore, returning collab.ErrNotFound
// when the epoch has no stored producer set.
func (s *Store) GetProducers(ctx context.Context, epochID header.EpochID) ([]header.ValidatorStake, error) {
	var producers []header.ValidatorStake
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketProducers).Get(epochID.Digest().Bytes())
		if raw == nil {
			return collab.ErrNotFound
		}
		r := borsh.NewReader(raw)
		n := r.ReadLen()
		decoded := make([]header.ValidatorStake, 0, n)
		for i := 0; i < n; i++ {
			vs, err := header.ReadValidatorStakeBorsh(r)
			if err != nil {
				return fmt.Errorf("boltstore: decode producer %d: %w", i, err)
			}
			decoded = append(decoded, vs)
		}
		if r.Err() != nil {
			return fmt.Errorf("boltstore: decode producers: %w", r.Err())
		}
		producers = decoded
		return nil
	})
	return producers, err
}

// PutProducers backs collab.ProducerStore.Put (see ProducerStore),
// rejecting sets larger
// than the protocol's 1024-entry bound with collab.ErrCapacityOverflow.
func (s *Store) PutProducers(ctx context.Context, epochID header.EpochID, producers []header.ValidatorStake) error {
	if len(producers) > maxProducers {
		return collab.ErrCapacityOverflow
	}
	w := borsh.NewWriter()
	header.WriteValidatorStakeVecBorsh(w, producers)
	encoded := w.Bytes()
	key := epochID.Digest().Bytes()
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketProducers).Put(key, encoded)
	})
}

// producerStoreView adapts Store's GetProducers/PutProducers methods
// to the collab.ProducerStore interface, whose method names (Get/Put)
// would otherwise collide with HeadStore's on the same receiver.
type producerStoreView struct {
	*Store
}

func (p producerStoreView) Get(ctx context.Context, epochID header.EpochID) ([]header.ValidatorStake, error) {
	return p.Store.GetProducers(ctx, epochID)
}

func (p producerStoreView) Put(ctx context.Context, epochID header.EpochID, producers []header.ValidatorStake) error {
	return p.Store.PutProducers(ctx, epochID, producers)
}

// ProducerStore returns a collab.ProducerStore view over s.
func (s *Store) ProducerStore() collab.ProducerStore {
	return producerStoreView{s}
}

var _ collab.HeadStore = (*Store)(nil)
