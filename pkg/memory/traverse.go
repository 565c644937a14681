package memory

import (
	"context"

	"go.uber.org/zap"

	"github.com/braidhq/braid/pkg/event"
	"github.com/braidhq/braid/pkg/storage"
)

// findAnchor scans every stored event and returns the one most similar to
// the query embedding, provided its similarity clears the threshold.
// Ties break toward the more recent event. Returns nil when nothing clears
// the bar (including the empty store).
func (c *Core) findAnchor(ctx context.Context, embedding []float32) (*event.Event, error) {
	events, err := c.store.AllForScan(ctx)
	if err != nil {
		return nil, err
	}

	bestSim := -1.0
	var best *event.Event
	for _, ev := range events {
		sim := event.Cosine(embedding, ev.Embedding)
		if sim > bestSim || (sim == bestSim && best != nil && ev.Timestamp.After(best.Timestamp)) {
			bestSim = sim
			best = ev
		}
	}

	if best == nil || bestSim < c.similarityThreshold {
		return nil, nil
	}
	return best, nil
}

// buildChain walks backward from the anchor to its root, then forward
// through consequences, and returns the distinct events in strict
// chronological order.
//
// A visited set defends against corruption-induced cycles: the data model
// makes them impossible, the traverser still refuses to loop. Broken or
// cyclic links stop traversal and degrade to the partial chain collected so
// far.
func (c *Core) buildChain(ctx context.Context, anchor *event.Event) []*event.Event {
	visited := map[int64]bool{anchor.ID: true}

	// Backward: collect anchor -> root, then reverse into chronology.
	ancestors := []*event.Event{anchor}
	current := anchor
	for current.CauseID != nil {
		nextID := *current.CauseID
		if visited[nextID] {
			c.logger.Error("CRITICAL: cycle detected in causal chain, halting traversal",
				zap.Int64("event_id", current.ID),
				zap.Int64("cause_id", nextID),
			)
			break
		}

		cause, err := c.store.GetByID(ctx, nextID)
		if err != nil {
			if storage.IsNotFound(err) {
				c.logger.Warn("broken causal link, returning partial chain",
					zap.Int64("event_id", current.ID),
					zap.Int64("missing_cause_id", nextID),
				)
			} else {
				c.logger.Warn("store error during backward traversal, returning partial chain",
					zap.Int64("event_id", current.ID),
					zap.Error(err),
				)
			}
			break
		}

		visited[cause.ID] = true
		ancestors = append(ancestors, cause)
		current = cause
	}

	chain := make([]*event.Event, 0, len(ancestors))
	for i := len(ancestors) - 1; i >= 0; i-- {
		chain = append(chain, ancestors[i])
	}

	// Forward: extend through consequences, oldest child first, up to the
	// configured depth.
	current = anchor
	for hop := 0; hop < c.consequenceDepth; hop++ {
		children, err := c.store.ChildrenOf(ctx, current.ID)
		if err != nil {
			c.logger.Warn("store error during forward traversal, stopping",
				zap.Int64("event_id", current.ID),
				zap.Error(err),
			)
			break
		}
		if len(children) == 0 {
			break
		}

		next := children[0]
		if visited[next.ID] {
			c.logger.Error("CRITICAL: cycle detected in consequence chain, halting traversal",
				zap.Int64("event_id", current.ID),
				zap.Int64("child_id", next.ID),
			)
			break
		}

		visited[next.ID] = true
		chain = append(chain, next)
		current = next
	}

	return chain
}
