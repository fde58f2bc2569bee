package evaluate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"
	"time"

	"github.com/poiesic/assessor/core"
)

// DefaultK is the cut-off used when none is given.
const DefaultK = 10

// ErrRecommenderRequired is returned when no recommender is given.
var ErrRecommenderRequired = errors.New("recommender required")

// Recommender ranks catalog records for a query.
type Recommender interface {
	Recommend(ctx context.Context, query string, spec *core.FilterSpec) ([]*core.ScoredCandidate, error)
}

// Progress receives one increment per finished case.
type Progress interface {
	Increment(delta int)
}

// CaseResult is the outcome of one case.
type CaseResult struct {
	Name             string        `json:"name"`
	Query            string        `json:"query"`
	Recommended      []string      `json:"recommended"`
	Labelled         bool          `json:"labelled"`
	Recall           float64       `json:"recall"`
	AveragePrecision float64       `json:"average_precision"`
	Elapsed          time.Duration `json:"elapsed"`
	Err              string        `json:"error,omitempty"`
}

// Report summarises a run.
type Report struct {
	K          int          `json:"k"`
	Cases      []CaseResult `json:"cases"`
	Labelled   int          `json:"labelled"`
	Failed     int          `json:"failed"`
	MeanRecall float64      `json:"mean_recall"`
	MAP        float64      `json:"map"`
}

// Runner evaluates cases against a recommender.
type Runner struct {
	recommender Recommender
	k           int
	progress    Progress
	logger      *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner) error

// WithK sets the metric cut-off.
func WithK(k int) Option {
	return func(r *Runner) error {
		if k < 1 {
			return fmt.Errorf("k must be positive, got %d", k)
		}
		r.k = k
		return nil
	}
}

// WithProgress reports one increment per finished case.
func WithProgress(p Progress) Option {
	return func(r *Runner) error {
		r.progress = p
		return nil
	}
}

// WithLogger sets the logger for the runner.
// If nil is passed, slog.Default() will be used.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewRunner creates a runner.
func NewRunner(recommender Recommender, opts ...Option) (*Runner, error) {
	if recommender == nil {
		return nil, ErrRecommenderRequired
	}
	r := &Runner{
		recommender: recommender,
		k:           DefaultK,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	r.logger = r.logger.With("component", "evaluator")
	return r, nil
}

// Run evaluates every case in order. A failing case scores zero and is
// recorded in the report; cancellation of ctx stops the run.
func (r *Runner) Run(ctx context.Context, cases []Case) (*Report, error) {
	report := &Report{K: r.k, Cases: make([]CaseResult, 0, len(cases))}

	var recallSum, apSum float64
	for i := range cases {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result := r.runCase(ctx, &cases[i])
		if result.Err != "" {
			report.Failed++
		}
		if result.Labelled {
			report.Labelled++
			recallSum += result.Recall
			apSum += result.AveragePrecision
		}
		report.Cases = append(report.Cases, result)

		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if r.progress != nil {
			r.progress.Increment(1)
		}
	}

	if report.Labelled > 0 {
		report.MeanRecall = recallSum / float64(report.Labelled)
		report.MAP = apSum / float64(report.Labelled)
	}
	return report, nil
}

func (r *Runner) runCase(ctx context.Context, c *Case) CaseResult {
	result := CaseResult{
		Name:        c.Name,
		Query:       c.Query,
		Labelled:    c.Labelled(),
		Recommended: []string{},
	}

	start := time.Now()
	spec, err := c.FilterSpec()
	if err != nil {
		result.Err = err.Error()
		return result
	}

	candidates, err := r.recommender.Recommend(ctx, c.Query, spec)
	result.Elapsed = time.Since(start)
	if err != nil {
		r.logger.Warn("case failed", "case", c.Name, "err", err)
		result.Err = err.Error()
		return result
	}

	for _, candidate := range candidates {
		result.Recommended = append(result.Recommended, candidate.Record.URL)
	}
	if result.Labelled {
		result.Recall = RecallAtK(c.Relevant, result.Recommended, r.k)
		result.AveragePrecision = AveragePrecisionAtK(c.Relevant, result.Recommended, r.k)
	}
	r.logger.Debug("case evaluated",
		"case", c.Name,
		"returned", len(candidates),
		"recall", result.Recall,
		"ap", result.AveragePrecision)
	return result
}

// WriteText renders the report as an aligned table.
func (rep *Report) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "CASE\tRETURNED\tRECALL@%d\tAP@%d\tELAPSED\tERROR\n", rep.K, rep.K)
	for _, c := range rep.Cases {
		recall, ap := "-", "-"
		if c.Labelled {
			recall = fmt.Sprintf("%.3f", c.Recall)
			ap = fmt.Sprintf("%.3f", c.AveragePrecision)
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\n",
			c.Name, len(c.Recommended), recall, ap, c.Elapsed.Round(time.Millisecond), c.Err)
	}
	fmt.Fprintf(tw, "\nMean Recall@%d:\t%.3f\n", rep.K, rep.MeanRecall)
	fmt.Fprintf(tw, "MAP@%d:\t%.3f\n", rep.K, rep.MAP)
	fmt.Fprintf(tw, "Labelled cases:\t%d/%d\n", rep.Labelled, len(rep.Cases))
	if rep.Failed > 0 {
		fmt.Fprintf(tw, "Failed cases:\t%d\n", rep.Failed)
	}
	return tw.Flush()
}
