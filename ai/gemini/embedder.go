// Package gemini provides an embedding provider backed by the Google Gemini API.
package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"github.com/poiesic/assessor/ai"
)

const (
	defaultModel = "text-embedding-004"

	// taskType tunes embeddings for symmetric query/description comparison.
	taskType = "SEMANTIC_SIMILARITY"
)

// Embedder implements ai.Embedder using the Gemini embedContent API.
type Embedder struct {
	client    *genai.Client
	modelName string
	batchSize int
	logger    *slog.Logger
}

func newEmbedder(ctx context.Context, config *ai.Config) (*Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  strings.TrimSpace(config.APIKey),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create genai client: %w", ai.ErrModelInit, err)
	}

	model := strings.TrimSpace(config.EmbeddingModel)
	if model == "" {
		model = defaultModel
	}

	return &Embedder{
		client:    client,
		modelName: model,
		batchSize: config.BatchSize,
		logger:    slog.Default().With("component", "gemini-embedder", "model", model),
	}, nil
}

// EmbedText generates a vector embedding for a single text string.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedTexts generates vector embeddings for texts, one request per batch.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += e.batchSize {
		vectors, err := e.embedBatch(ctx, texts[start:min(start+e.batchSize, len(texts))])
		if err != nil {
			return nil, err
		}
		out = append(out, vectors...)
	}
	return out, nil
}

func (e *Embedder) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	e.logger.Debug("generating embeddings for texts", "count", len(texts))

	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	resp, err := e.client.Models.EmbedContent(ctx, e.modelName, contents, &genai.EmbedContentConfig{
		TaskType: taskType,
	})
	if err != nil {
		e.logger.Error("failed to generate embeddings", "count", len(texts), "err", err)
		return nil, fmt.Errorf("gemini embed content: %w", err)
	}

	return vectorsFromResponse(resp, len(texts))
}

// vectorsFromResponse extracts one non-empty vector per input from resp.
func vectorsFromResponse(resp *genai.EmbedContentResponse, want int) ([][]float32, error) {
	if resp == nil {
		return nil, ai.ErrEmptyEmbedding
	}
	if len(resp.Embeddings) != want {
		return nil, fmt.Errorf("%w: sent %d, got %d", ai.ErrBatchSizeMismatch, want, len(resp.Embeddings))
	}

	vectors := make([][]float32, want)
	for i, emb := range resp.Embeddings {
		if emb == nil || len(emb.Values) == 0 {
			return nil, fmt.Errorf("%w: position %d", ai.ErrEmptyEmbedding, i)
		}
		vectors[i] = emb.Values
	}
	return vectors, nil
}
