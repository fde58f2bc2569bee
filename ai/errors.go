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


package ai

import "errors"

var (
	// ErrModelInit indicates the embedding model could not be loaded or reached.
	// It is fatal at startup.
	ErrModelInit = errors.New("embedding model initialization failed")

	// ErrUnknownProvider indicates an unsupported provider name.
	ErrUnknownProvider = errors.New("unknown embedding provider")

	// ErrEmptyEmbedding indicates a provider returned no vector.
	ErrEmptyEmbedding = errors.New("empty embedding")

	// ErrBatchSizeMismatch indicates a batch call returned a different number of vectors than inputs.
	ErrBatchSizeMismatch = errors.New("embedding batch size mismatch")

	// ErrInvalidMaxAttempts indicates maxAttempts must be positive.
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")
)
