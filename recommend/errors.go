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


package recommend

import "errors"

var (
	// ErrCatalogRequired is returned when a catalog store is not provided.
	ErrCatalogRequired = errors.New("catalog store required")

	// ErrProviderRequired is returned when an embedding provider is not provided.
	ErrProviderRequired = errors.New("embedding provider required")

	// ErrQueryEmbedding is returned when the query itself cannot be embedded.
	ErrQueryEmbedding = errors.New("query embedding failed")

	// ErrInvalidMaxResults is returned for a negative result cap.
	ErrInvalidMaxResults = errors.New("max results cannot be negative")

	// ErrInvalidTimeout is returned for a negative request timeout.
	ErrInvalidTimeout = errors.New("timeout cannot be negative")

	// ErrUnknownScorePolicy is returned when parsing an unsupported policy name.
	ErrUnknownScorePolicy = errors.New("unknown score policy")
)
