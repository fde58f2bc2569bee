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


package storage

import (
	"context"

	"github.com/poiesic/assessor/core"
)

// VectorStore caches embedding vectors by content key.
// Implementations must be safe for concurrent use.
type VectorStore interface {
	// Get returns the vector stored under key.
	// Returns ErrNotFound if the key is absent or expired.
	Get(ctx context.Context, key core.Key) ([]float32, error)

	// Put stores vector under key, replacing any previous value.
	// Stores may drop entries at any time; a successful Put does not
	// guarantee a later Get hits.
	Put(ctx context.Context, key core.Key, vector []float32) error

	// Close releases resources held by the store.
	Close() error
}
