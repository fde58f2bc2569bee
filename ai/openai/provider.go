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


package openai

import (
	"log/slog"

	"github.com/poiesic/assessor/ai"
)

// Provider serves embeddings from an OpenAI-compatible API such as OpenAI
// itself, Ollama, LocalAI or vLLM.
type Provider struct {
	modelID  string
	embedder ai.Embedder
	logger   *slog.Logger
}

var _ ai.Provider = (*Provider)(nil)

// NewProvider validates config and builds the embedder, wrapping it so
// vectors come back unit length when config.NormalizeVectors is set.
// No request is sent until the first embedding call.
func NewProvider(config *ai.Config) (ai.Provider, error) {
	embedder, err := newEmbedder(config)
	if err != nil {
		return nil, err
	}

	p := &Provider{
		modelID:  config.ModelID(),
		embedder: embedder,
		logger:   slog.Default().With("component", "openai-provider"),
	}
	if config.NormalizeVectors {
		p.embedder = ai.Normalized(embedder)
	}
	return p, nil
}

func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

func (p *Provider) ModelID() string {
	return p.modelID
}

// Close is a no-op; the HTTP client holds no resources that need releasing.
func (p *Provider) Close() error {
	p.logger.Debug("closing provider", "model", p.modelID)
	return nil
}
