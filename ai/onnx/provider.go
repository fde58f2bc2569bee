package onnx

import (
	"log/slog"

	"github.com/poiesic/assessor/ai"
)

// Provider implements ai.Provider with a local onnxruntime model.
type Provider struct {
	config   *ai.Config
	embedder *Embedder
	logger   *slog.Logger
}

// NewProvider loads the tokenizer and model. Failures wrap ai.ErrModelInit.
// Vectors are always unit length, so NormalizeVectors has no effect here.
func NewProvider(config *ai.Config) (ai.Provider, error) {
	embedder, err := newEmbedder(config)
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("component", "onnx-provider")
	logger.Info("loaded local embedding model", "model", config.ModelPath, "maxSeqLen", config.MaxSeqLen)

	return &Provider{
		config:   config,
		embedder: embedder,
		logger:   logger,
	}, nil
}

func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

func (p *Provider) ModelID() string {
	return p.config.ModelID()
}

// Close destroys the session and releases the runtime environment.
func (p *Provider) Close() error {
	p.logger.Debug("closing ONNX provider")
	return p.embedder.close()
}
