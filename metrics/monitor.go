package metrics

import (
	"github.com/poiesic/assessor/core"
	"github.com/poiesic/assessor/recommend"
)

// Monitor records recommendation requests in the package collectors.
// It keeps no per-request state and is safe for concurrent use.
type Monitor struct{}

var _ recommend.Monitor = Monitor{}

// NewMonitor returns a recommend.Monitor backed by Prometheus collectors.
func NewMonitor() recommend.Monitor {
	return Monitor{}
}

func (Monitor) Start(_ string) {
	RecommendationsTotal.Inc()
}

func (Monitor) AfterFilter(passed, rejected int) {
	FilteredCandidatesTotal.WithLabelValues("passed").Add(float64(passed))
	FilteredCandidatesTotal.WithLabelValues("rejected").Add(float64(rejected))
}

func (Monitor) CandidateFailed(_ *core.Assessment, _ error) {
	CandidateEmbeddingFailuresTotal.Inc()
}

func (Monitor) Finish(results []*core.ScoredCandidate) {
	ResultsReturned.Observe(float64(len(results)))
}
