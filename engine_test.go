package assessor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/assessor/ai"
	"github.com/poiesic/assessor/ai/breaker"
	"github.com/poiesic/assessor/ai/mock"
	"github.com/poiesic/assessor/core"
	"github.com/poiesic/assessor/recommend"
)

const testCatalog = `{"assessments": [
	{"url": "https://example.com/java", "adaptive_support": "No", "description": "Core Java programming knowledge test",
	 "duration": 20, "remote_support": "Yes", "test_type": ["Knowledge & Skills"]},
	{"url": "https://example.com/opq", "adaptive_support": "No", "description": "Occupational personality questionnaire",
	 "duration": 45, "remote_support": "Yes", "test_type": ["Personality & Behaviour"]},
	{"url": "https://example.com/verify", "adaptive_support": "Yes", "description": "Verify numerical reasoning ability test",
	 "duration": 90, "remote_support": "No", "test_type": ["Cognitive Ability"]}
]}`

func writeCatalog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(testCatalog), 0o644))
	return path
}

func newTestEngine(t *testing.T, opts ...EngineOption) (*Engine, *mock.MockEmbedder) {
	t.Helper()
	embedder := mock.NewMockEmbedder()
	opts = append([]EngineOption{
		WithProvider(mock.NewMockProviderWithEmbedder(embedder)),
		WithCatalogPath(writeCatalog(t)),
	}, opts...)
	e, err := NewEngine(context.Background(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	return e, embedder
}

func TestNewProvider(t *testing.T) {
	t.Run("mock", func(t *testing.T) {
		p, err := NewProvider(context.Background(), ai.NewConfig(ai.WithProvider("MOCK")))
		require.NoError(t, err)
		assert.Equal(t, mock.DefaultModelID, p.ModelID())
		assert.NoError(t, p.Close())
	})

	t.Run("openai", func(t *testing.T) {
		p, err := NewProvider(context.Background(), ai.DefaultConfig())
		require.NoError(t, err)
		assert.Equal(t, "openai:all-minilm", p.ModelID())
		assert.NoError(t, p.Close())
	})

	t.Run("unknown provider", func(t *testing.T) {
		_, err := NewProvider(context.Background(), ai.NewConfig(ai.WithProvider("bogus")))
		assert.ErrorIs(t, err, ai.ErrUnknownProvider)
	})

	t.Run("incomplete gemini config", func(t *testing.T) {
		_, err := NewProvider(context.Background(), ai.NewConfig(ai.WithProvider(ai.ProviderGemini)))
		assert.Error(t, err)
	})
}

func TestParseCacheKind(t *testing.T) {
	for _, tt := range []struct {
		in      string
		want    CacheKind
		wantErr bool
	}{
		{in: "", want: CacheNone},
		{in: "none", want: CacheNone},
		{in: "memory", want: CacheMemory},
		{in: "badger", want: CacheBadger},
		{in: "redis", wantErr: true},
	} {
		got, err := ParseCacheKind(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestNewEngine(t *testing.T) {
	e, _ := newTestEngine(t)

	assert.Equal(t, 3, e.Catalog().Len())
	assert.False(t, e.Catalog().Degraded())
	assert.Equal(t, mock.DefaultModelID, e.ModelID())
	assert.NotNil(t, e.Recommender())
	assert.Empty(t, e.BreakerState())
	_, cached := e.CacheStats()
	assert.False(t, cached)
}

func TestNewEngine_Recommend(t *testing.T) {
	e, _ := newTestEngine(t)

	results, err := e.Recommend(context.Background(), "Core Java programming knowledge test", nil)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "https://example.com/java", results[0].Record.URL)

	remote := core.SupportNo
	results, err = e.Recommend(context.Background(), "reasoning", &core.FilterSpec{RemoteSupport: &remote})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "https://example.com/verify", results[0].Record.URL)
}

func TestNewEngine_DegradedCatalog(t *testing.T) {
	e, err := NewEngine(context.Background(),
		WithProvider(mock.NewMockProvider()),
		WithCatalogPath(filepath.Join(t.TempDir(), "missing.json")))
	require.NoError(t, err)
	defer e.Close()

	assert.True(t, e.Catalog().Degraded())
	assert.Zero(t, e.Catalog().Len())

	results, err := e.Recommend(context.Background(), "java", nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestNewEngine_WarmupFailureIsFatal(t *testing.T) {
	embedder := mock.NewMockEmbedder().WithEmbedTextFunc(func(context.Context, string) ([]float32, error) {
		return nil, errors.New("model not loaded")
	})
	provider := mock.NewMockProviderWithEmbedder(embedder)

	_, err := NewEngine(context.Background(),
		WithProvider(provider),
		WithWarmup(2, time.Millisecond))
	assert.ErrorIs(t, err, ai.ErrModelInit)
	assert.True(t, provider.Closed(), "provider closed on failed construction")
}

func TestNewEngine_InvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opt  EngineOption
	}{
		{name: "nil ai config", opt: WithAIConfig(nil)},
		{name: "unknown cache", opt: WithCache("redis")},
		{name: "negative ttl", opt: WithCacheTTL(-time.Second)},
		{name: "zero cache size", opt: WithCacheMaxBytes(0)},
		{name: "negative warmup", opt: WithWarmup(-1, 0)},
		{name: "bad recommender option", opt: WithRecommendOptions(recommend.WithMaxResults(-1))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEngine(context.Background(), WithProvider(mock.NewMockProvider()), tt.opt)
			assert.Error(t, err)
		})
	}
}

func TestNewEngine_Cache(t *testing.T) {
	for _, kind := range []CacheKind{CacheMemory, CacheBadger} {
		t.Run(string(kind), func(t *testing.T) {
			e, embedder := newTestEngine(t, WithCache(kind), WithPrewarm(2, nil))

			stats, ok := e.CacheStats()
			require.True(t, ok)
			assert.Equal(t, uint64(3), stats.Misses)

			calls := embedder.CallCount()
			_, err := e.Recommend(context.Background(), "java developer", nil)
			require.NoError(t, err)

			// Only the query is new; every description comes from the cache.
			assert.Equal(t, 1, embedder.CallCount()-calls)
			stats, _ = e.CacheStats()
			assert.GreaterOrEqual(t, stats.Hits, uint64(3))
		})
	}
}

func TestNewEngine_CacheDoesNotOutliveEngine(t *testing.T) {
	for _, kind := range []CacheKind{CacheMemory, CacheBadger} {
		t.Run(string(kind), func(t *testing.T) {
			dir := t.TempDir()
			t.Chdir(dir)
			path := writeCatalog(t)

			first := mock.NewMockEmbedder()
			e, err := NewEngine(context.Background(),
				WithProvider(mock.NewMockProviderWithEmbedder(first)),
				WithCatalogPath(path),
				WithCache(kind),
				WithCacheTTL(time.Hour))
			require.NoError(t, err)
			_, err = e.Recommend(context.Background(), "java", nil)
			require.NoError(t, err)
			require.NoError(t, e.Close())

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			assert.Empty(t, entries, "cache wrote to the working directory")

			second := mock.NewMockEmbedder()
			e, err = NewEngine(context.Background(),
				WithProvider(mock.NewMockProviderWithEmbedder(second)),
				WithCatalogPath(path),
				WithCache(kind))
			require.NoError(t, err)
			t.Cleanup(func() { _ = e.Close() })

			_, err = e.Recommend(context.Background(), "java", nil)
			require.NoError(t, err)
			assert.Equal(t, 1, second.TextCount("java"))
			assert.Equal(t, 1, second.TextCount("Core Java programming knowledge test"))
			stats, ok := e.CacheStats()
			require.True(t, ok)
			assert.Zero(t, stats.Hits)
		})
	}
}

func TestNewEngine_Breaker(t *testing.T) {
	e, embedder := newTestEngine(t, WithBreaker(true, breaker.Config{
		Name:             "test",
		FailureThreshold: 1,
		Timeout:          time.Minute,
	}))
	assert.Equal(t, "closed", e.BreakerState())

	embedder.WithFailure("down", errors.New("connection refused"))
	_, err := e.Recommend(context.Background(), "down", nil)
	assert.ErrorIs(t, err, recommend.ErrQueryEmbedding)
	assert.Equal(t, "open", e.BreakerState())

	_, err = e.Recommend(context.Background(), "java", nil)
	assert.ErrorIs(t, err, breaker.ErrOpen)
}

func TestEngine_CloseIsIdempotent(t *testing.T) {
	provider := mock.NewMockProviderWithEmbedder(mock.NewMockEmbedder())
	e, err := NewEngine(context.Background(),
		WithProvider(provider),
		WithCatalogPath(writeCatalog(t)),
		WithCache(CacheBadger))
	require.NoError(t, err)

	assert.NoError(t, e.Close())
	assert.NoError(t, e.Close())
	assert.True(t, provider.Closed())
}
