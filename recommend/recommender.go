package recommend

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/assessor/ai"
	"github.com/poiesic/assessor/catalog"
	"github.com/poiesic/assessor/core"
	"github.com/poiesic/assessor/filter"
)

const (
	// DefaultMaxResults caps the result list.
	DefaultMaxResults = 10

	// DefaultTimeout bounds the embedding work of one request.
	DefaultTimeout = 30 * time.Second
)

// Recommender ranks catalog records against queries.
type Recommender struct {
	store      *catalog.Store
	embedder   ai.Embedder
	modelID    string
	pool       *ants.Pool
	maxResults int
	policy     ScorePolicy
	timeout    time.Duration
	monitor    Monitor
	logger     *slog.Logger
}

// Option configures a Recommender.
type Option func(*Recommender) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Recommender) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// WithMaxResults caps the number of results. Zero means unlimited.
// Default is 10.
func WithMaxResults(n int) Option {
	return func(r *Recommender) error {
		if n < 0 {
			return fmt.Errorf("%w: %d", ErrInvalidMaxResults, n)
		}
		r.maxResults = n
		return nil
	}
}

// WithScorePolicy selects which scores are eligible for results.
// Default is ScorePolicyAll.
func WithScorePolicy(policy ScorePolicy) Option {
	return func(r *Recommender) error {
		r.policy = policy
		return nil
	}
}

// WithTimeout bounds the embedding work of each request. Zero disables the bound.
// Default is 30s.
func WithTimeout(d time.Duration) Option {
	return func(r *Recommender) error {
		if d < 0 {
			return fmt.Errorf("%w: %s", ErrInvalidTimeout, d)
		}
		r.timeout = d
		return nil
	}
}

// WithPoolSize sets the worker pool size used to score candidates.
// Default is runtime.NumCPU(), with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(r *Recommender) error {
		if size < 1 {
			size = 1
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		if r.pool != nil {
			r.pool.Release()
		}
		r.pool = pool
		return nil
	}
}

// WithMonitor installs a monitor observing every request.
func WithMonitor(monitor Monitor) Option {
	return func(r *Recommender) error {
		if monitor == nil {
			monitor = &noopMonitor{}
		}
		r.monitor = monitor
		return nil
	}
}

// WithEmbedder replaces the provider's embedder, typically with a decorated
// one (cache, circuit breaker). The provider still supplies the model id.
func WithEmbedder(embedder ai.Embedder) Option {
	return func(r *Recommender) error {
		if embedder != nil {
			r.embedder = embedder
		}
		return nil
	}
}

// NewRecommender creates a new recommender over store using provider's embedder.
func NewRecommender(store *catalog.Store, provider ai.Provider, opts ...Option) (*Recommender, error) {
	if store == nil {
		return nil, ErrCatalogRequired
	}
	if provider == nil {
		return nil, ErrProviderRequired
	}

	pool, err := ants.NewPool(max(runtime.NumCPU(), 1))
	if err != nil {
		return nil, err
	}

	r := &Recommender{
		store:      store,
		embedder:   provider.Embedder(),
		modelID:    provider.ModelID(),
		pool:       pool,
		maxResults: DefaultMaxResults,
		policy:     ScorePolicyAll,
		timeout:    DefaultTimeout,
		monitor:    &noopMonitor{},
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			r.pool.Release()
			return nil, err
		}
	}
	r.logger = r.logger.With("component", "recommender")

	return r, nil
}

// Recommend returns catalog records matching spec, ranked by similarity to query.
// A nil spec applies no filters. The result is never nil on success.
func (r *Recommender) Recommend(ctx context.Context, query string, spec *core.FilterSpec) ([]*core.ScoredCandidate, error) {
	return r.RecommendWithMonitor(ctx, query, spec, nil)
}

// RecommendWithMonitor is Recommend with an additional per-request monitor.
func (r *Recommender) RecommendWithMonitor(ctx context.Context, query string, spec *core.FilterSpec, monitor Monitor) ([]*core.ScoredCandidate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, core.ErrInvalidQuery
	}

	mon := Monitors(r.monitor, monitor)
	mon.Start(query)

	if r.store.Len() == 0 {
		results := []*core.ScoredCandidate{}
		mon.Finish(results)
		return results, nil
	}

	embedCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		embedCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	queryVector, err := r.embedder.EmbedText(embedCtx, query)
	if err == nil && len(queryVector) == 0 {
		err = ai.ErrEmptyEmbedding
	}
	if err != nil {
		r.logger.Error("error generating embedding for query", "err", err)
		return nil, fmt.Errorf("%w: %w", ErrQueryEmbedding, err)
	}

	survivors := r.applyFilters(spec)
	mon.AfterFilter(len(survivors), r.store.Len()-len(survivors))

	scores := r.scoreAll(embedCtx, queryVector, survivors, mon)

	// The caller gave up; partial scores are not worth returning.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results := make([]*core.ScoredCandidate, 0, len(survivors))
	for i, record := range survivors {
		if !r.policy.admits(scores[i]) {
			continue
		}
		results = append(results, &core.ScoredCandidate{Record: record, Score: scores[i]})
	}

	slices.SortStableFunc(results, func(a, b *core.ScoredCandidate) int {
		return cmp.Compare(b.Score, a.Score)
	})

	if r.maxResults > 0 && len(results) > r.maxResults {
		results = results[:r.maxResults]
	}

	mon.Finish(results)
	return results, nil
}

// applyFilters returns the records passing spec, in catalog order.
func (r *Recommender) applyFilters(spec *core.FilterSpec) []*core.Assessment {
	if spec.IsEmpty() {
		return r.store.Records()
	}

	survivors := make([]*core.Assessment, 0, r.store.Len())
	var rejected map[filter.Dimension]int
	for _, record := range r.store.All() {
		ok, dim := filter.Explain(record, spec)
		if ok {
			survivors = append(survivors, record)
			continue
		}
		if rejected == nil {
			rejected = make(map[filter.Dimension]int)
		}
		rejected[dim]++
	}

	if len(rejected) > 0 && r.logger.Enabled(context.Background(), slog.LevelDebug) {
		attrs := make([]any, 0, 2*len(rejected))
		for dim, n := range rejected {
			attrs = append(attrs, dim.String(), n)
		}
		r.logger.Debug("filtered catalog", append([]any{"passed", len(survivors)}, attrs...)...)
	}
	return survivors
}

// Catalog returns the store the recommender ranks.
func (r *Recommender) Catalog() *catalog.Store {
	return r.store
}

// ModelID returns the embedding model id.
func (r *Recommender) ModelID() string {
	return r.modelID
}

// Release frees the worker pool. The recommender must not be used afterwards.
func (r *Recommender) Release() {
	r.pool.Release()
}
