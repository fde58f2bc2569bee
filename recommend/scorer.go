package recommend

import (
	"context"
	"sync"

	"github.com/poiesic/assessor/core"
	"github.com/poiesic/assessor/similarity"
)

// scoreAll scores every record against query on the worker pool.
// scores[i] belongs to records[i] regardless of completion order.
func (r *Recommender) scoreAll(ctx context.Context, query []float32, records []*core.Assessment, mon Monitor) []float32 {
	scores := make([]float32, len(records))
	if len(records) == 0 {
		return scores
	}

	var wg sync.WaitGroup
	for i, record := range records {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			scores[i] = r.scoreOne(ctx, query, record, mon)
		}
		if err := r.pool.Submit(task); err != nil {
			r.logger.Warn("worker pool rejected task, scoring inline", "err", err)
			task()
		}
	}
	wg.Wait()

	return scores
}

// scoreOne returns the dot product of query with the record's description
// embedding, or 0 if the description cannot be scored.
func (r *Recommender) scoreOne(ctx context.Context, query []float32, record *core.Assessment, mon Monitor) float32 {
	vector, err := r.embedder.EmbedText(ctx, record.Description)
	if err == nil {
		var score float32
		score, err = similarity.Dot(query, vector)
		if err == nil {
			return score
		}
	}

	r.logger.Warn("error scoring candidate", "url", record.URL, "err", err)
	mon.CandidateFailed(record, err)
	return 0
}
