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


package assessor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/poiesic/assessor/ai"
	"github.com/poiesic/assessor/ai/breaker"
	"github.com/poiesic/assessor/ai/cache"
	"github.com/poiesic/assessor/ai/gemini"
	"github.com/poiesic/assessor/ai/mock"
	"github.com/poiesic/assessor/ai/onnx"
	"github.com/poiesic/assessor/ai/openai"
	"github.com/poiesic/assessor/catalog"
	"github.com/poiesic/assessor/core"
	"github.com/poiesic/assessor/metrics"
	"github.com/poiesic/assessor/recommend"
	"github.com/poiesic/assessor/storage"
	"github.com/poiesic/assessor/storage/badger"
	"github.com/poiesic/assessor/storage/memory"
)

// CacheKind selects the embedding cache backend.
type CacheKind string

const (
	CacheNone   CacheKind = "none"
	CacheMemory CacheKind = "memory"
	CacheBadger CacheKind = "badger"
)

// ParseCacheKind parses a cache kind name.
func ParseCacheKind(s string) (CacheKind, error) {
	switch k := CacheKind(s); k {
	case CacheNone, CacheMemory, CacheBadger:
		return k, nil
	case "":
		return CacheNone, nil
	default:
		return "", fmt.Errorf("unknown cache kind %q", s)
	}
}

// Engine owns the catalog, the embedding provider and the recommender built
// on them. It is safe for concurrent use once NewEngine returns.
type Engine struct {
	store       *catalog.Store
	provider    ai.Provider
	vectors     storage.VectorStore
	backend     *badger.Backend
	cached      *cache.Embedder
	breaker     *breaker.Embedder
	recommender *recommend.Recommender
	logger      *slog.Logger

	closeOnce sync.Once
	closeErr  error
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions) error

type engineOptions struct {
	aiConfig       *ai.Config
	provider       ai.Provider
	catalogPath    string
	catalogOpts    []catalog.Option
	store          *catalog.Store
	cacheKind      CacheKind
	cacheTTL       time.Duration
	cacheMaxBytes  int64
	breakerEnabled *bool
	breakerConfig  breaker.Config
	warmupAttempts int
	warmupDelay    time.Duration
	prewarm        bool
	prewarmBatch   int
	prewarmReport  recommend.ProgressReporter
	recommendOpts  []recommend.Option
	logger         *slog.Logger
}

// WithAIConfig sets the embedding provider configuration.
func WithAIConfig(config *ai.Config) EngineOption {
	return func(o *engineOptions) error {
		if config == nil {
			return errors.New("ai config cannot be nil")
		}
		o.aiConfig = config
		return nil
	}
}

// WithProvider uses an already constructed provider instead of building one
// from the AI config. The engine takes ownership and closes it.
func WithProvider(provider ai.Provider) EngineOption {
	return func(o *engineOptions) error {
		o.provider = provider
		return nil
	}
}

// WithCatalogPath loads the catalog from a JSON file. A file that cannot be
// read or parsed leaves the engine running with an empty, degraded catalog.
func WithCatalogPath(path string, opts ...catalog.Option) EngineOption {
	return func(o *engineOptions) error {
		o.catalogPath = path
		o.catalogOpts = opts
		return nil
	}
}

// WithCatalog uses an already loaded store.
func WithCatalog(store *catalog.Store) EngineOption {
	return func(o *engineOptions) error {
		o.store = store
		return nil
	}
}

// WithCache puts a read-through cache in front of the embedder. Both kinds
// live in process memory and are gone after Close.
func WithCache(kind CacheKind) EngineOption {
	return func(o *engineOptions) error {
		if _, err := ParseCacheKind(string(kind)); err != nil {
			return err
		}
		o.cacheKind = kind
		return nil
	}
}

// WithCacheTTL expires cached vectors after d. Zero keeps them.
func WithCacheTTL(d time.Duration) EngineOption {
	return func(o *engineOptions) error {
		if d < 0 {
			return errors.New("cache TTL cannot be negative")
		}
		o.cacheTTL = d
		return nil
	}
}

// WithCacheMaxBytes bounds the memory cache.
func WithCacheMaxBytes(n int64) EngineOption {
	return func(o *engineOptions) error {
		if n <= 0 {
			return errors.New("cache size must be positive")
		}
		o.cacheMaxBytes = n
		return nil
	}
}

// WithBreaker enables or disables the circuit breaker. By default it guards
// remote providers only.
func WithBreaker(enabled bool, config breaker.Config) EngineOption {
	return func(o *engineOptions) error {
		o.breakerEnabled = &enabled
		o.breakerConfig = config
		return nil
	}
}

// WithWarmup probes the provider before the engine is returned.
// Zero attempts skips the probe.
func WithWarmup(attempts int, delay time.Duration) EngineOption {
	return func(o *engineOptions) error {
		if attempts < 0 {
			return ai.ErrInvalidMaxAttempts
		}
		o.warmupAttempts = attempts
		o.warmupDelay = delay
		return nil
	}
}

// WithPrewarm embeds the whole catalog during construction. progress may be nil.
func WithPrewarm(batchSize int, progress recommend.ProgressReporter) EngineOption {
	return func(o *engineOptions) error {
		o.prewarm = true
		o.prewarmBatch = batchSize
		o.prewarmReport = progress
		return nil
	}
}

// WithRecommendOptions passes options to the recommender.
func WithRecommendOptions(opts ...recommend.Option) EngineOption {
	return func(o *engineOptions) error {
		o.recommendOpts = append(o.recommendOpts, opts...)
		return nil
	}
}

// WithLogger sets the logger for the engine and its components.
// If nil is passed, slog.Default() will be used.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(o *engineOptions) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
		return nil
	}
}

// NewProvider builds the provider named by config.Provider.
func NewProvider(ctx context.Context, config *ai.Config) (ai.Provider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	switch config.Provider {
	case ai.ProviderOpenAI:
		return openai.NewProvider(config)
	case ai.ProviderGemini:
		return gemini.NewProvider(ctx, config)
	case ai.ProviderONNX:
		return onnx.NewProvider(config)
	case ai.ProviderMock:
		return mock.NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ai.ErrUnknownProvider, config.Provider)
	}
}

func isRemote(provider string) bool {
	return provider == ai.ProviderOpenAI || provider == ai.ProviderGemini
}

// NewEngine builds the provider, warms it up, loads the catalog and
// assembles the recommender. Any error here is fatal to the process.
func NewEngine(ctx context.Context, opts ...EngineOption) (*Engine, error) {
	o := &engineOptions{
		aiConfig:      ai.DefaultConfig(),
		cacheKind:     CacheNone,
		breakerConfig: breaker.DefaultConfig(),
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}

	e := &Engine{logger: o.logger.With("component", "engine")}
	ok := false
	defer func() {
		if !ok {
			e.Close()
		}
	}()

	// Provider
	if o.provider != nil {
		e.provider = o.provider
	} else {
		provider, err := NewProvider(ctx, o.aiConfig)
		if err != nil {
			return nil, err
		}
		e.provider = provider
	}
	e.logger.Info("embedding provider ready", "model", e.provider.ModelID())

	if o.warmupAttempts > 0 {
		dim, err := ai.Warmup(ctx, e.provider.Embedder(), o.warmupAttempts, o.warmupDelay)
		if err != nil {
			return nil, err
		}
		e.logger.Info("embedding model warmed up", "dimension", dim)
	}

	embedder := e.provider.Embedder()

	breakerEnabled := o.provider == nil && isRemote(o.aiConfig.Provider)
	if o.breakerEnabled != nil {
		breakerEnabled = *o.breakerEnabled
	}
	if breakerEnabled {
		cfg := o.breakerConfig
		if cfg.Logger == nil {
			cfg.Logger = o.logger
		}
		if cfg.OnStateChange == nil {
			cfg.OnStateChange = metrics.SetBreakerState
		}
		e.breaker = breaker.New(embedder, cfg)
		metrics.SetBreakerState(e.breaker.State())
		embedder = e.breaker
	}

	// Cache
	if err := e.openCache(o); err != nil {
		return nil, err
	}
	if e.vectors != nil {
		e.cached = cache.New(embedder, e.vectors, e.provider.ModelID(),
			cache.WithLogger(o.logger),
			cache.WithObserver(metrics.RecordCacheLookup))
		embedder = e.cached
	}

	// Catalog
	switch {
	case o.store != nil:
		e.store = o.store
	case o.catalogPath != "":
		e.store = catalog.LoadOrEmpty(o.catalogPath, append([]catalog.Option{catalog.WithLogger(o.logger)}, o.catalogOpts...)...)
	default:
		e.store = catalog.New(nil)
	}
	metrics.SetCatalog(e.store.Len(), e.store.Quarantined())
	if e.store.Degraded() {
		e.logger.Warn("catalog unavailable, serving degraded", "source", e.store.Source(), "err", e.store.Err())
	} else {
		e.logger.Info("catalog loaded",
			"source", e.store.Source(),
			"records", e.store.Len(),
			"quarantined", e.store.Quarantined())
	}

	// Recommender
	recOpts := []recommend.Option{
		recommend.WithLogger(o.logger),
		recommend.WithMonitor(metrics.NewMonitor()),
	}
	recOpts = append(recOpts, o.recommendOpts...)
	recOpts = append(recOpts, recommend.WithEmbedder(embedder))
	rec, err := recommend.NewRecommender(e.store, e.provider, recOpts...)
	if err != nil {
		return nil, err
	}
	e.recommender = rec

	if o.prewarm && e.store.Len() > 0 {
		report, err := e.Prewarm(ctx, o.prewarmBatch, o.prewarmReport)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			e.logger.Warn("prewarm incomplete", "failed", report.Failed, "err", err)
		}
		if report != nil {
			e.logger.Info("prewarm finished",
				"descriptions", report.Descriptions,
				"embedded", report.Embedded,
				"failed", report.Failed,
				"elapsed", report.Elapsed)
		}
	}

	ok = true
	return e, nil
}

func (e *Engine) openCache(o *engineOptions) error {
	switch o.cacheKind {
	case CacheMemory:
		memOpts := []memory.Option{memory.WithTTL(o.cacheTTL)}
		if o.cacheMaxBytes > 0 {
			memOpts = append(memOpts, memory.WithMaxCost(o.cacheMaxBytes))
		}
		store, err := memory.NewVectorStore(memOpts...)
		if err != nil {
			return fmt.Errorf("open memory cache: %w", err)
		}
		e.vectors = store
	case CacheBadger:
		backend, err := badger.OpenBackend("", true)
		if err != nil {
			return fmt.Errorf("open badger cache: %w", err)
		}
		e.backend = backend
		e.vectors = badger.NewVectorStore(backend, badger.WithTTL(o.cacheTTL))
	}
	if e.vectors != nil {
		e.logger.Info("embedding cache enabled", "kind", o.cacheKind)
	}
	return nil
}

// Recommend ranks the catalog for query under spec.
func (e *Engine) Recommend(ctx context.Context, query string, spec *core.FilterSpec) ([]*core.ScoredCandidate, error) {
	return e.recommender.Recommend(ctx, query, spec)
}

// Prewarm embeds the catalog descriptions so the cache is hot.
func (e *Engine) Prewarm(ctx context.Context, batchSize int, progress recommend.ProgressReporter) (*recommend.PrewarmReport, error) {
	report, err := e.recommender.Prewarm(ctx, batchSize, progress)
	// Memory cache writes land asynchronously.
	if w, ok := e.vectors.(interface{ Wait() }); ok {
		w.Wait()
	}
	return report, err
}

// Catalog returns the loaded catalog.
func (e *Engine) Catalog() *catalog.Store {
	return e.store
}

// ModelID returns the embedding model id.
func (e *Engine) ModelID() string {
	return e.provider.ModelID()
}

// Recommender returns the underlying recommender.
func (e *Engine) Recommender() *recommend.Recommender {
	return e.recommender
}

// CacheStats returns embedding cache counters, or false when caching is off.
func (e *Engine) CacheStats() (cache.Stats, bool) {
	if e.cached == nil {
		return cache.Stats{}, false
	}
	return e.cached.Stats(), true
}

// BreakerState returns the circuit breaker state, or "" when there is none.
func (e *Engine) BreakerState() string {
	if e.breaker == nil {
		return ""
	}
	return e.breaker.State()
}

// Close releases the worker pool, the cache and the provider. Only the first
// call does any work.
func (e *Engine) Close() error {
	e.closeOnce.Do(func() { e.closeErr = e.close() })
	return e.closeErr
}

func (e *Engine) close() error {
	var errs []error
	if e.recommender != nil {
		e.recommender.Release()
	}
	if e.vectors != nil {
		if err := e.vectors.Close(); err != nil {
			e.logger.Error("error closing embedding cache", "err", err)
			errs = append(errs, err)
		}
	}
	if e.backend != nil {
		if err := e.backend.Close(); err != nil {
			e.logger.Error("error closing badger backend", "err", err)
			errs = append(errs, err)
		}
	}
	if e.provider != nil {
		if err := e.provider.Close(); err != nil {
			e.logger.Error("error closing embedding provider", "err", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
