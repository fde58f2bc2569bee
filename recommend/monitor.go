package recommend

import (
	"github.com/poiesic/assessor/core"
)

// Monitor provides hooks to observe a recommendation request.
// CandidateFailed may be called from several goroutines at once.
type Monitor interface {
	Start(query string)
	AfterFilter(passed, rejected int)
	CandidateFailed(record *core.Assessment, err error)
	Finish(results []*core.ScoredCandidate)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                              {}
func (n *noopMonitor) AfterFilter(_, _ int)                        {}
func (n *noopMonitor) CandidateFailed(_ *core.Assessment, _ error) {}
func (n *noopMonitor) Finish(_ []*core.ScoredCandidate)            {}

// multiMonitor fans hooks out to several monitors in order.
type multiMonitor []Monitor

// Monitors combines monitors; nil entries are skipped.
func Monitors(monitors ...Monitor) Monitor {
	var out multiMonitor
	for _, m := range monitors {
		if m != nil {
			out = append(out, m)
		}
	}
	switch len(out) {
	case 0:
		return &noopMonitor{}
	case 1:
		return out[0]
	}
	return out
}

func (m multiMonitor) Start(query string) {
	for _, mon := range m {
		mon.Start(query)
	}
}

func (m multiMonitor) AfterFilter(passed, rejected int) {
	for _, mon := range m {
		mon.AfterFilter(passed, rejected)
	}
}

func (m multiMonitor) CandidateFailed(record *core.Assessment, err error) {
	for _, mon := range m {
		mon.CandidateFailed(record, err)
	}
}

func (m multiMonitor) Finish(results []*core.ScoredCandidate) {
	for _, mon := range m {
		mon.Finish(results)
	}
}
