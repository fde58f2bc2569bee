package mock

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/poiesic/assessor/similarity"
)

// DefaultDimension matches the output size of all-MiniLM-L6-v2.
const DefaultDimension = 384

// MockEmbedder is a test double for ai.Embedder.
// Lookup order per text: injected failure, fixed vector, EmbedTextFunc, hash-seeded vector.
type MockEmbedder struct {
	// EmbedTextFunc is called by EmbedText if set and no fixed vector or failure matches.
	EmbedTextFunc func(ctx context.Context, text string) ([]float32, error)

	// EmbedTextsFunc replaces the whole batch behavior if set.
	EmbedTextsFunc func(ctx context.Context, texts []string) ([][]float32, error)

	mu        sync.Mutex
	dim       int
	vectors   map[string][]float32
	failures  map[string]error
	callCount int
	texts     map[string]int
}

// NewMockEmbedder creates a mock embedder with default deterministic behavior.
// Note: Returns concrete type to allow test assertions.
func NewMockEmbedder() *MockEmbedder {
	return NewMockEmbedderWithDimension(DefaultDimension)
}

// NewMockEmbedderWithDimension creates a mock embedder producing vectors of length dim.
func NewMockEmbedderWithDimension(dim int) *MockEmbedder {
	return &MockEmbedder{
		dim:      dim,
		vectors:  make(map[string][]float32),
		failures: make(map[string]error),
		texts:    make(map[string]int),
	}
}

// WithVector makes text embed to vec.
func (m *MockEmbedder) WithVector(text string, vec []float32) *MockEmbedder {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vectors[text] = vec
	return m
}

// WithFailure makes embedding text fail with err.
func (m *MockEmbedder) WithFailure(text string, err error) *MockEmbedder {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[text] = err
	return m
}

// WithEmbedTextFunc sets custom single-text behavior.
func (m *MockEmbedder) WithEmbedTextFunc(fn func(ctx context.Context, text string) ([]float32, error)) *MockEmbedder {
	m.EmbedTextFunc = fn
	return m
}

// EmbedText returns the configured or hash-seeded vector for text.
func (m *MockEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.callCount++
	m.texts[text]++
	m.mu.Unlock()

	return m.embed(ctx, text)
}

// EmbedTexts embeds each text in order. Any failure fails the batch.
func (m *MockEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.callCount++
	for _, text := range texts {
		m.texts[text]++
	}
	m.mu.Unlock()

	if m.EmbedTextsFunc != nil {
		return m.EmbedTextsFunc(ctx, texts)
	}

	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := m.embed(ctx, text)
		if err != nil {
			return nil, err
		}
		embeddings[i] = v
	}
	return embeddings, nil
}

func (m *MockEmbedder) embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	err, failing := m.failures[text]
	vec, fixed := m.vectors[text]
	m.mu.Unlock()

	if failing {
		return nil, err
	}
	if fixed {
		return append([]float32(nil), vec...), nil
	}
	if m.EmbedTextFunc != nil {
		return m.EmbedTextFunc(ctx, text)
	}
	return generateDeterministicVector(text, m.dim), nil
}

// CallCount returns the number of EmbedText and EmbedTexts calls.
func (m *MockEmbedder) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// TextCount returns how many times text was embedded, across both methods.
func (m *MockEmbedder) TextCount(text string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.texts[text]
}

// Reset clears call counts, fixed vectors, failures and custom functions.
func (m *MockEmbedder) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.texts = make(map[string]int)
	m.vectors = make(map[string][]float32)
	m.failures = make(map[string]error)
	m.EmbedTextFunc = nil
	m.EmbedTextsFunc = nil
}

// generateDeterministicVector creates a deterministic unit vector from text.
// It uses an FNV hash so the same text always produces the same vector.
func generateDeterministicVector(text string, dim int) []float32 {
	h := fnv.New32a()
	h.Write([]byte(text))
	seed := h.Sum32()

	vector := make([]float32, dim)
	for i := range dim {
		seed = seed*1664525 + 1013904223 // LCG constants
		vector[i] = float32(seed%1000)/1000.0 - 0.5
	}

	return similarity.Normalize(vector)
}
