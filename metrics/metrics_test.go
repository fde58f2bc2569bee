package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/poiesic/assessor/core"
)

func TestMonitor(t *testing.T) {
	m := NewMonitor()

	requests := testutil.ToFloat64(RecommendationsTotal)
	passed := testutil.ToFloat64(FilteredCandidatesTotal.WithLabelValues("passed"))
	rejected := testutil.ToFloat64(FilteredCandidatesTotal.WithLabelValues("rejected"))
	failures := testutil.ToFloat64(CandidateEmbeddingFailuresTotal)

	m.Start("java")
	m.AfterFilter(7, 3)
	m.CandidateFailed(&core.Assessment{URL: "x"}, errors.New("boom"))
	m.Finish([]*core.ScoredCandidate{{}, {}})

	assert.Equal(t, requests+1, testutil.ToFloat64(RecommendationsTotal))
	assert.Equal(t, passed+7, testutil.ToFloat64(FilteredCandidatesTotal.WithLabelValues("passed")))
	assert.Equal(t, rejected+3, testutil.ToFloat64(FilteredCandidatesTotal.WithLabelValues("rejected")))
	assert.Equal(t, failures+1, testutil.ToFloat64(CandidateEmbeddingFailuresTotal))
}

func TestRecordCacheLookup(t *testing.T) {
	hits := testutil.ToFloat64(EmbeddingCacheLookupsTotal.WithLabelValues("hit"))
	misses := testutil.ToFloat64(EmbeddingCacheLookupsTotal.WithLabelValues("miss"))

	RecordCacheLookup(true)
	RecordCacheLookup(false)
	RecordCacheLookup(false)

	assert.Equal(t, hits+1, testutil.ToFloat64(EmbeddingCacheLookupsTotal.WithLabelValues("hit")))
	assert.Equal(t, misses+2, testutil.ToFloat64(EmbeddingCacheLookupsTotal.WithLabelValues("miss")))
}

func TestSetBreakerState(t *testing.T) {
	tests := []struct {
		state    string
		expected float64
	}{
		{"open", 2},
		{"half-open", 1},
		{"closed", 0},
	}
	for _, tt := range tests {
		t.Run(tt.state, func(t *testing.T) {
			SetBreakerState(tt.state)
			assert.Equal(t, tt.expected, testutil.ToFloat64(EmbeddingBreakerState))
		})
	}
}

func TestSetCatalog(t *testing.T) {
	SetCatalog(42, 3)
	assert.Equal(t, float64(42), testutil.ToFloat64(CatalogRecords))
	assert.Equal(t, float64(3), testutil.ToFloat64(CatalogQuarantined))
}

func TestRecordHTTPRequest(t *testing.T) {
	counter := HTTPRequestsTotal.WithLabelValues("POST", "/recommend", "200")
	before := testutil.ToFloat64(counter)

	RecordHTTPRequest("POST", "/recommend", 200, 15*time.Millisecond)

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}
