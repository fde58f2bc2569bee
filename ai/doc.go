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


// Package ai provides the embedding abstraction used to score assessments.
//
// The package defines two interfaces:
//
//   - Embedder: Generates vector embeddings from text
//   - Provider: Owns an embedding model for the lifetime of the process
//
// # Implementation Packages
//
//   - ai/openai: OpenAI-compatible HTTP APIs (OpenAI, Ollama, LocalAI, vLLM)
//   - ai/gemini: Google Gemini embeddings
//   - ai/onnx: Local sentence-transformer run through onnxruntime
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// Embedders can be decorated: ai/cache adds a read-through vector cache,
// ai/breaker adds a circuit breaker, and Normalized scales every vector to
// unit length.
//
// # Constructor Return Type Pattern
//
// Public constructors (openai.NewProvider, gemini.NewProvider, onnx.NewProvider)
// return the ai.Provider interface. Test utility constructors
// (mock.NewMockEmbedder) return concrete types so tests can inject behavior and
// assert call counts.
//
// # Usage Example
//
//	config := ai.NewConfig(ai.WithEmbeddingModel("all-minilm"))
//	provider, err := openai.NewProvider(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	if _, err := ai.Warmup(ctx, provider.Embedder(), 5, time.Second); err != nil {
//	    log.Fatal(err)
//	}
//	vector, err := provider.Embedder().EmbedText(ctx, "Java developer with team skills")
//
// Initialization failures wrap ErrModelInit and should abort startup.
package ai
