package memory

import (
	"context"

	"go.uber.org/zap"
)

// batchProgressInterval is how often batch ingest logs progress.
const batchProgressInterval = 100

// BatchItemError records a single failed item in a batch ingest.
type BatchItemError struct {
	// Index is the item's position in the submitted batch.
	Index int `json:"index"`

	// Kind classifies the failure.
	Kind Kind `json:"kind"`

	// Message is the failure description.
	Message string `json:"message"`
}

// BatchResult summarises a batch ingest. The batch never aborts on
// individual failures; every item is attempted.
type BatchResult struct {
	Total      int              `json:"total"`
	Successful int              `json:"successful"`
	Failed     int              `json:"failed"`
	Errors     []BatchItemError `json:"errors,omitempty"`
	EventIDs   []int64          `json:"event_ids,omitempty"`
}

// AddEventsBatch ingests texts one at a time, collecting per-item outcomes.
// Individual failures (validation, embedder outage) are recorded and the
// batch continues. The result keeps one event id or error entry per item.
func (c *Core) AddEventsBatch(ctx context.Context, texts []string) BatchResult {
	result := BatchResult{Total: len(texts)}

	for i, text := range texts {
		id, err := c.AddEvent(ctx, text)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, BatchItemError{
				Index:   i,
				Kind:    KindOf(err),
				Message: err.Error(),
			})
		} else {
			result.Successful++
			result.EventIDs = append(result.EventIDs, id)
		}

		if (i+1)%batchProgressInterval == 0 {
			c.logger.Info("batch ingest progress",
				zap.Int("processed", i+1),
				zap.Int("total", result.Total),
				zap.Int("failed", result.Failed),
			)
		}
	}

	return result
}
