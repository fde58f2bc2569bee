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

import (
	"errors"
	"fmt"
	"strings"
)

// Supported provider names.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderONNX   = "onnx"
	ProviderMock   = "mock"
)

const (
	// DefaultMaxSeqLen is the token limit of the default sentence-transformer.
	DefaultMaxSeqLen = 128

	// DefaultBatchSize is the number of texts sent per remote embedding call.
	DefaultBatchSize = 64
)

type Config struct {
	// Provider selects the embedding backend: "openai", "gemini", "onnx" or "mock".
	// Default: "openai"
	Provider string

	// EmbeddingHost is the base URL for an OpenAI-compatible embedding API.
	// Example: "http://localhost:11434/v1" for a local Ollama server
	EmbeddingHost string

	// EmbeddingModel is the model identifier to use for text embeddings.
	// Example: "all-minilm", "text-embedding-3-small", "text-embedding-004"
	EmbeddingModel string

	// APIKey authenticates against hosted providers.
	// Local OpenAI-compatible servers accept any value.
	APIKey string

	// ModelPath is the ONNX model file used by the onnx provider.
	ModelPath string

	// TokenizerPath is the HuggingFace tokenizer.json used by the onnx provider.
	TokenizerPath string

	// RuntimeLibrary is the path to the onnxruntime shared library.
	// Empty uses the platform default.
	RuntimeLibrary string

	// MaxSeqLen truncates tokenized input for the onnx provider.
	// Default: 128
	MaxSeqLen int

	// BatchSize caps the texts per request to a remote provider.
	// Default: 64
	BatchSize int

	// NormalizeVectors wraps the embedder so every vector has unit length.
	// Default: true
	NormalizeVectors bool
}

type ConfigOption func(*Config)

func WithProvider(provider string) ConfigOption {
	return func(c *Config) {
		c.Provider = provider
	}
}

func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithONNXModel sets the model and tokenizer files for the onnx provider.
func WithONNXModel(modelPath, tokenizerPath string) ConfigOption {
	return func(c *Config) {
		c.ModelPath = modelPath
		c.TokenizerPath = tokenizerPath
	}
}

func WithRuntimeLibrary(path string) ConfigOption {
	return func(c *Config) {
		c.RuntimeLibrary = path
	}
}

func WithMaxSeqLen(n int) ConfigOption {
	return func(c *Config) {
		c.MaxSeqLen = n
	}
}

func WithBatchSize(n int) ConfigOption {
	return func(c *Config) {
		c.BatchSize = n
	}
}

func WithNormalizeVectors(enabled bool) ConfigOption {
	return func(c *Config) {
		c.NormalizeVectors = enabled
	}
}

// DefaultConfig returns a Config with sensible defaults for a local OpenAI-compatible service.
func DefaultConfig() *Config {
	return &Config{
		Provider:         ProviderOpenAI,
		EmbeddingHost:    "http://localhost:11434/v1",
		EmbeddingModel:   "all-minilm",
		MaxSeqLen:        DefaultMaxSeqLen,
		BatchSize:        DefaultBatchSize,
		NormalizeVectors: true,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithProvider(ProviderGemini),
//	    WithEmbeddingModel("text-embedding-004"),
//	    WithAPIKey(os.Getenv("GEMINI_API_KEY")),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// Provider names are lower-cased and, for the openai provider, the /v1 suffix
// required by OpenAI-compatible APIs (Ollama, LocalAI, vLLM) is added if missing.
func (c *Config) Normalize() {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	if c.Provider == ProviderOpenAI && c.EmbeddingHost != "" && !strings.HasSuffix(c.EmbeddingHost, "/v1") {
		c.EmbeddingHost = strings.TrimSuffix(c.EmbeddingHost, "/")
		c.EmbeddingHost = c.EmbeddingHost + "/v1"
	}
	if c.MaxSeqLen == 0 {
		c.MaxSeqLen = DefaultMaxSeqLen
	}
	if c.BatchSize == 0 {
		c.BatchSize = DefaultBatchSize
	}
}

// Validate checks that the configuration is complete for the selected provider.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.BatchSize < 0 {
		return errors.New("ai config: BatchSize cannot be negative")
	}

	switch c.Provider {
	case ProviderOpenAI:
		if c.EmbeddingHost == "" {
			return errors.New("ai config: EmbeddingHost is required")
		}
		if c.EmbeddingModel == "" {
			return errors.New("ai config: EmbeddingModel is required")
		}
	case ProviderGemini:
		if c.APIKey == "" {
			return errors.New("ai config: APIKey is required for gemini")
		}
		if c.EmbeddingModel == "" {
			return errors.New("ai config: EmbeddingModel is required")
		}
	case ProviderONNX:
		if c.ModelPath == "" {
			return errors.New("ai config: ModelPath is required for onnx")
		}
		if c.TokenizerPath == "" {
			return errors.New("ai config: TokenizerPath is required for onnx")
		}
		if c.MaxSeqLen < 2 {
			return errors.New("ai config: MaxSeqLen must be at least 2")
		}
	case ProviderMock:
	default:
		return fmt.Errorf("ai config: %w: %q", ErrUnknownProvider, c.Provider)
	}
	return nil
}

// ModelID returns the identifier used to key cached vectors for this configuration.
func (c *Config) ModelID() string {
	switch c.Provider {
	case ProviderONNX:
		return ProviderONNX + ":" + c.ModelPath
	default:
		return c.Provider + ":" + c.EmbeddingModel
	}
}
