package gemini

import (
	"context"
	"log/slog"

	"github.com/poiesic/assessor/ai"
)

// Provider implements ai.Provider using the Gemini API.
type Provider struct {
	config   *ai.Config
	embedder ai.Embedder
	logger   *slog.Logger
}

// NewProvider creates a Gemini embedding provider.
// The config must name the gemini provider and carry an API key.
func NewProvider(ctx context.Context, config *ai.Config) (ai.Provider, error) {
	embedder, err := newEmbedder(ctx, config)
	if err != nil {
		return nil, err
	}

	var e ai.Embedder = embedder
	if config.NormalizeVectors {
		e = ai.Normalized(e)
	}

	return &Provider{
		config:   config,
		embedder: e,
		logger:   slog.Default().With("component", "gemini-provider"),
	}, nil
}

func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

func (p *Provider) ModelID() string {
	return p.config.ModelID()
}

func (p *Provider) Close() error {
	p.logger.Debug("closing Gemini provider")
	return nil
}
