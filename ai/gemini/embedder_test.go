package gemini

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/poiesic/assessor/ai"
)

func TestNewProvider_RequiresAPIKey(t *testing.T) {
	cfg := ai.NewConfig(ai.WithProvider(ai.ProviderGemini))

	_, err := NewProvider(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "APIKey is required")
}

func TestNewProvider_ModelID(t *testing.T) {
	cfg := ai.NewConfig(
		ai.WithProvider(ai.ProviderGemini),
		ai.WithAPIKey("test-key"),
		ai.WithEmbeddingModel("text-embedding-004"),
	)

	p, err := NewProvider(context.Background(), cfg)
	require.NoError(t, err)
	defer p.Close()

	assert.Equal(t, "gemini:text-embedding-004", p.ModelID())
	assert.NotNil(t, p.Embedder())
}

func TestVectorsFromResponse(t *testing.T) {
	t.Run("one vector per input", func(t *testing.T) {
		resp := &genai.EmbedContentResponse{Embeddings: []*genai.ContentEmbedding{
			{Values: []float32{1, 2}},
			{Values: []float32{3, 4}},
		}}
		vectors, err := vectorsFromResponse(resp, 2)
		require.NoError(t, err)
		assert.Equal(t, [][]float32{{1, 2}, {3, 4}}, vectors)
	})

	t.Run("nil response", func(t *testing.T) {
		_, err := vectorsFromResponse(nil, 1)
		assert.ErrorIs(t, err, ai.ErrEmptyEmbedding)
	})

	t.Run("count mismatch", func(t *testing.T) {
		resp := &genai.EmbedContentResponse{Embeddings: []*genai.ContentEmbedding{{Values: []float32{1}}}}
		_, err := vectorsFromResponse(resp, 2)
		assert.ErrorIs(t, err, ai.ErrBatchSizeMismatch)
	})

	t.Run("empty values", func(t *testing.T) {
		resp := &genai.EmbedContentResponse{Embeddings: []*genai.ContentEmbedding{{}}}
		_, err := vectorsFromResponse(resp, 1)
		assert.ErrorIs(t, err, ai.ErrEmptyEmbedding)
	})
}
