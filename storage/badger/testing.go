package badger

import (
	"github.com/poiesic/assessor/storage"
)

// NewMemoryVectorStore opens an in-memory backend and returns a vector store
// that owns it. Closing the store closes the backend.
func NewMemoryVectorStore(opts ...VectorStoreOption) (storage.VectorStore, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, err
	}
	s := NewVectorStore(backend, opts...).(*VectorStore)
	s.owned = true
	return s, nil
}
