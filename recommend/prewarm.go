package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/poiesic/assessor/ai"
)

const (
	// DefaultPrewarmBatchSize is the number of descriptions embedded per call.
	DefaultPrewarmBatchSize = 32

	prewarmMaxAttempts = 3
	prewarmRetryDelay  = 500 * time.Millisecond
)

// ProgressReporter receives the number of descriptions processed so far.
type ProgressReporter interface {
	Increment(delta int)
}

// PrewarmReport summarizes a Prewarm run.
type PrewarmReport struct {
	Descriptions int
	Embedded     int
	Failed       int
	Elapsed      time.Duration
}

// Prewarm embeds every distinct catalog description in batches so a caching
// embedder is hot before the first request. Batch failures are retried with
// backoff, then counted and returned joined; they never stop the run unless
// ctx is canceled. progress may be nil.
func (r *Recommender) Prewarm(ctx context.Context, batchSize int, progress ProgressReporter) (*PrewarmReport, error) {
	if batchSize <= 0 {
		batchSize = DefaultPrewarmBatchSize
	}

	start := time.Now()
	texts := r.distinctDescriptions()
	report := &PrewarmReport{Descriptions: len(texts)}

	var errs []error
	for i := 0; i < len(texts); i += batchSize {
		if err := ctx.Err(); err != nil {
			report.Elapsed = time.Since(start)
			return report, err
		}

		batch := texts[i:min(i+batchSize, len(texts))]
		err := ai.RetryWithBackoff(ctx, func() error {
			vectors, err := r.embedder.EmbedTexts(ctx, batch)
			if err != nil {
				return err
			}
			if len(vectors) != len(batch) {
				return fmt.Errorf("%w: sent %d, got %d", ai.ErrBatchSizeMismatch, len(batch), len(vectors))
			}
			return nil
		}, prewarmMaxAttempts, prewarmRetryDelay)

		if err != nil {
			r.logger.Warn("prewarm batch failed", "offset", i, "size", len(batch), "err", err)
			report.Failed += len(batch)
			errs = append(errs, fmt.Errorf("batch at %d: %w", i, err))
		} else {
			report.Embedded += len(batch)
		}
		if progress != nil {
			progress.Increment(len(batch))
		}
	}

	report.Elapsed = time.Since(start)
	r.logger.Info("prewarmed description embeddings",
		"descriptions", report.Descriptions, "embedded", report.Embedded,
		"failed", report.Failed, "elapsed", report.Elapsed)
	return report, errors.Join(errs...)
}

func (r *Recommender) distinctDescriptions() []string {
	seen := make(map[string]struct{}, r.store.Len())
	texts := make([]string, 0, r.store.Len())
	for _, record := range r.store.All() {
		if _, ok := seen[record.Description]; ok {
			continue
		}
		seen[record.Description] = struct{}{}
		texts = append(texts, record.Description)
	}
	return texts
}
