// Package cache adds a read-through vector cache in front of an embedder.
//
// Vectors are keyed by core.KeyFromText(modelID, text). Store failures are
// logged and treated as misses; they never fail an embedding call.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/poiesic/assessor/ai"
	"github.com/poiesic/assessor/core"
	"github.com/poiesic/assessor/storage"
)

// Stats counts cache lookups.
type Stats struct {
	Hits   uint64
	Misses uint64
}

// Embedder is a caching ai.Embedder.
type Embedder struct {
	next     ai.Embedder
	store    storage.VectorStore
	modelID  string
	logger   *slog.Logger
	observer func(hit bool)

	hits   atomic.Uint64
	misses atomic.Uint64
}

var _ ai.Embedder = (*Embedder)(nil)

// Option configures a caching Embedder.
type Option func(*Embedder)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Embedder) {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
	}
}

// WithObserver calls fn after every lookup with whether it hit.
func WithObserver(fn func(hit bool)) Option {
	return func(e *Embedder) {
		e.observer = fn
	}
}

// New wraps next so vectors are read from and written to store.
func New(next ai.Embedder, store storage.VectorStore, modelID string, opts ...Option) *Embedder {
	e := &Embedder{
		next:    next,
		store:   store,
		modelID: modelID,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("component", "embedding-cache", "model", modelID)
	return e
}

// EmbedText returns the cached vector for text, embedding and storing it on a miss.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	key := core.KeyFromText(e.modelID, text)
	if v, ok := e.lookup(ctx, key); ok {
		return v, nil
	}

	v, err := e.next.EmbedText(ctx, text)
	if err != nil {
		return nil, err
	}
	e.remember(ctx, key, v)
	return v, nil
}

// EmbedTexts serves hits from the cache and embeds all misses in one batch.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	keys := make([]core.Key, len(texts))
	var missing []int

	for i, text := range texts {
		keys[i] = core.KeyFromText(e.modelID, text)
		if v, ok := e.lookup(ctx, keys[i]); ok {
			out[i] = v
			continue
		}
		missing = append(missing, i)
	}
	if len(missing) == 0 {
		return out, nil
	}

	batch := make([]string, len(missing))
	for j, i := range missing {
		batch[j] = texts[i]
	}
	vectors, err := e.next.EmbedTexts(ctx, batch)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(batch) {
		return nil, fmt.Errorf("%w: sent %d, got %d", ai.ErrBatchSizeMismatch, len(batch), len(vectors))
	}

	for j, i := range missing {
		out[i] = vectors[j]
		e.remember(ctx, keys[i], vectors[j])
	}
	return out, nil
}

// Stats returns hit and miss counts since construction.
func (e *Embedder) Stats() Stats {
	return Stats{Hits: e.hits.Load(), Misses: e.misses.Load()}
}

func (e *Embedder) lookup(ctx context.Context, key core.Key) ([]float32, bool) {
	v, err := e.store.Get(ctx, key)
	if err == nil && len(v) > 0 {
		e.hits.Add(1)
		e.observe(true)
		return v, true
	}
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		e.logger.Warn("vector cache read failed", "key", uint64(key), "err", err)
	}
	e.misses.Add(1)
	e.observe(false)
	return nil, false
}

func (e *Embedder) observe(hit bool) {
	if e.observer != nil {
		e.observer(hit)
	}
}

func (e *Embedder) remember(ctx context.Context, key core.Key, v []float32) {
	if len(v) == 0 {
		return
	}
	if err := e.store.Put(ctx, key, v); err != nil {
		e.logger.Warn("vector cache write failed", "key", uint64(key), "err", err)
	}
}
