package badger

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/poiesic/assessor/core"
	"github.com/poiesic/assessor/storage"
)

// VectorStore implements storage.VectorStore on a BadgerDB backend.
type VectorStore struct {
	backend *Backend
	ttl     time.Duration
	owned   bool
}

var _ storage.VectorStore = (*VectorStore)(nil)

// VectorStoreOption configures a VectorStore.
type VectorStoreOption func(*VectorStore)

// WithTTL expires cached vectors after d. Zero keeps them forever.
func WithTTL(d time.Duration) VectorStoreOption {
	return func(s *VectorStore) {
		s.ttl = d
	}
}

// NewVectorStore creates a vector store on an existing backend.
// The caller keeps ownership of the backend.
func NewVectorStore(backend *Backend, opts ...VectorStoreOption) storage.VectorStore {
	s := &VectorStore{backend: backend}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the cached vector for key.
func (s *VectorStore) Get(ctx context.Context, key core.Key) ([]float32, error) {
	if s.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var vector []float32
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeVectorKey(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			vector, err = storage.UnmarshalVector(val)
			return err
		})
	}, false)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return vector, nil
}

// Put stores vector under key with the configured TTL.
func (s *VectorStore) Put(ctx context.Context, key core.Key, vector []float32) error {
	if s.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	entry := badger.NewEntry(makeVectorKey(key), storage.MarshalVector(vector))
	if s.ttl > 0 {
		entry = entry.WithTTL(s.ttl)
	}
	return s.backend.WithTx(func(tx *badger.Txn) error {
		return tx.SetEntry(entry)
	}, true)
}

// Close closes the backend if the store owns it.
func (s *VectorStore) Close() error {
	if !s.owned || s.backend.IsClosed() {
		return nil
	}
	return s.backend.Close()
}
