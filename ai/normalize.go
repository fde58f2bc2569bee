package ai

import (
	"context"

	"github.com/poiesic/assessor/similarity"
)

type normalizedEmbedder struct {
	next Embedder
}

// Normalized wraps an embedder so every returned vector has unit length.
// Dot products between wrapped vectors are cosine similarities.
func Normalized(e Embedder) Embedder {
	if _, ok := e.(*normalizedEmbedder); ok {
		return e
	}
	return &normalizedEmbedder{next: e}
}

func (n *normalizedEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	v, err := n.next.EmbedText(ctx, text)
	if err != nil {
		return nil, err
	}
	return similarity.Normalize(v), nil
}

func (n *normalizedEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	vs, err := n.next.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, err
	}
	out := make([][]float32, len(vs))
	for i, v := range vs {
		out[i] = similarity.Normalize(v)
	}
	return out, nil
}
