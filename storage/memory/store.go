// Package memory provides a cost-bounded in-process vector cache built on ristretto.
package memory

import (
	"context"
	"slices"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/poiesic/assessor/core"
	"github.com/poiesic/assessor/storage"
)

const (
	// DefaultMaxCost bounds the cache at 64 MiB of vector data.
	DefaultMaxCost = 64 << 20

	// DefaultNumCounters tracks access frequency for roughly 100k keys.
	DefaultNumCounters = 1e6
)

// VectorStore implements storage.VectorStore on a ristretto cache.
// The cost of an entry is its encoded size in bytes.
type VectorStore struct {
	cache  *ristretto.Cache[uint64, []float32]
	ttl    time.Duration
	closed atomic.Bool
}

var _ storage.VectorStore = (*VectorStore)(nil)

type options struct {
	maxCost     int64
	numCounters int64
	ttl         time.Duration
}

// Option configures a memory VectorStore.
type Option func(*options)

// WithMaxCost bounds the total encoded size of cached vectors.
func WithMaxCost(bytes int64) Option {
	return func(o *options) {
		if bytes > 0 {
			o.maxCost = bytes
		}
	}
}

// WithNumCounters sets the number of frequency counters; about 10x the expected entry count.
func WithNumCounters(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.numCounters = n
		}
	}
}

// WithTTL expires cached vectors after d. Zero keeps them until evicted.
func WithTTL(d time.Duration) Option {
	return func(o *options) {
		o.ttl = d
	}
}

// NewVectorStore creates a ristretto-backed vector store.
func NewVectorStore(opts ...Option) (storage.VectorStore, error) {
	o := &options{
		maxCost:     DefaultMaxCost,
		numCounters: DefaultNumCounters,
	}
	for _, opt := range opts {
		opt(o)
	}

	cache, err := ristretto.NewCache(&ristretto.Config[uint64, []float32]{
		NumCounters: o.numCounters,
		MaxCost:     o.maxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}

	return &VectorStore{cache: cache, ttl: o.ttl}, nil
}

// Get returns a copy of the cached vector for key.
func (s *VectorStore) Get(ctx context.Context, key core.Key) ([]float32, error) {
	if s.closed.Load() {
		return nil, storage.ErrStorageClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vector, ok := s.cache.Get(uint64(key))
	if !ok {
		return nil, storage.ErrNotFound
	}
	return slices.Clone(vector), nil
}

// Put stores vector under key. Writes are applied asynchronously and may be
// rejected by the admission policy.
func (s *VectorStore) Put(ctx context.Context, key core.Key, vector []float32) error {
	if s.closed.Load() {
		return storage.ErrStorageClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	vector = slices.Clone(vector)
	cost := int64(storage.VectorSize(vector))
	if s.ttl > 0 {
		s.cache.SetWithTTL(uint64(key), vector, cost, s.ttl)
	} else {
		s.cache.Set(uint64(key), vector, cost)
	}
	return nil
}

// Wait blocks until pending writes are visible to Get.
func (s *VectorStore) Wait() {
	s.cache.Wait()
}

// Close stops the cache's background goroutines.
func (s *VectorStore) Close() error {
	if s.closed.CompareAndSwap(false, true) {
		s.cache.Close()
	}
	return nil
}
