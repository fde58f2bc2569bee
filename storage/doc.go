// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package storage provides the vector cache abstraction used by ai/cache.
//
// Description embeddings are a pure function of (model, text), so they can be
// cached and shared between requests. This package defines the VectorStore
// interface and the binary encoding of vectors; backends live in
// sub-packages:
//
//   - storage/badger: in-memory BadgerDB with per-entry TTL
//   - storage/memory: cost-bounded ristretto cache
//
// # Constructor Return Type Pattern
//
// Backend constructors return the storage.VectorStore interface to prevent
// accidental coupling to a specific backend:
//
//	store, err := memory.NewVectorStore(memory.WithMaxCost(64 << 20))
//
// # Usage
//
//	key := core.KeyFromText(provider.ModelID(), description)
//	vector, err := store.Get(ctx, key)
//	if errors.Is(err, storage.ErrNotFound) {
//	    vector, err = embedder.EmbedText(ctx, description)
//	    ...
//	    _ = store.Put(ctx, key, vector)
//	}
package storage
