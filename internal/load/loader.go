// Package load uploads the staged dataset to the remote store in fixed-size
// batches, retrying each batch independently.
package load

import (
	"context"
	"fmt"
	"log"

	"github.com/i474232898/air-quality-etl/internal/airquality"
	"github.com/i474232898/air-quality-etl/internal/retry"
	"github.com/i474232898/air-quality-etl/internal/store"
)

// Loader partitions rows into batches and uploads them in order. A batch
// that exhausts its retries is recorded as failed and the loader moves on
// to the remaining batches; one bad batch never aborts the whole load.
type Loader struct {
	store     store.Store
	batchSize int
	policy    retry.Policy
}

// Report summarizes one load run.
type Report struct {
	UploadedCount int
	TotalBatches  int
	FailedBatches []int
}

// Complete reports whether every batch made it.
func (r Report) Complete() bool {
	return len(r.FailedBatches) == 0
}

// NewLoader wires a loader against the given store.
func NewLoader(st store.Store, batchSize int, policy retry.Policy) *Loader {
	return &Loader{
		store:     st,
		batchSize: batchSize,
		policy:    policy,
	}
}

// Load uploads the dataset. Batches are uploaded in the order they were
// produced; each gets up to MaxAttempts tries with a fixed delay between
// them. Returns an error only on context cancellation; partial failures
// live in the report.
func (l *Loader) Load(ctx context.Context, dataset airquality.Dataset) (Report, error) {
	report := Report{}
	total := len(dataset)

	log.Printf("load: uploading %d rows in batches of %d", total, l.batchSize)

	for start := 0; start < total; start += l.batchSize {
		end := start + l.batchSize
		if end > total {
			end = total
		}
		batch := dataset[start:end]
		report.TotalBatches++

		if err := l.uploadBatch(ctx, batch, start, end); err != nil {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			log.Printf("load: could not upload batch %d-%d after %d attempts: %v", start, end, l.policy.MaxAttempts, err)
			report.FailedBatches = append(report.FailedBatches, report.TotalBatches-1)
			continue
		}

		log.Printf("load: uploaded batch %d-%d", start, end)
		report.UploadedCount += len(batch)
	}

	return report, nil
}

func (l *Loader) uploadBatch(ctx context.Context, batch airquality.Dataset, start, end int) error {
	var lastErr error

	for attempt := 1; attempt <= l.policy.MaxAttempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		lastErr = l.store.InsertRows(ctx, batch)
		if lastErr == nil {
			return nil
		}

		log.Printf("load: retry %d/%d for batch %d-%d: %v", attempt, l.policy.MaxAttempts, start, end, lastErr)

		if attempt < l.policy.MaxAttempts {
			if err := l.policy.Wait(ctx); err != nil {
				return err
			}
		}
	}

	return fmt.Errorf("batch %d-%d: %w", start, end, lastErr)
}
