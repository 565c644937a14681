package memory

import (
	"context"
	"sort"

	"github.com/braidhq/braid/pkg/event"
)

// candidate pairs a prior event with its similarity to the new event.
type candidate struct {
	ev  *event.Event
	sim float64
}

// findPotentialCauses returns up to maxPotentialCauses prior events that
// might be the new event's direct cause, ordered by similarity descending.
//
// Only events inside the recency window are considered. Events whose text
// equals the new event's text are skipped so repeated inputs don't
// self-link; dimension mismatches score zero via Cosine and fall below the
// threshold.
func (c *Core) findPotentialCauses(ctx context.Context, embedding []float32, effectText string) ([]candidate, error) {
	since := c.now().Add(-c.timeDecay)

	pool, err := c.store.RecentWithin(ctx, since, c.candidatePoolLimit)
	if err != nil {
		return nil, err
	}

	var candidates []candidate
	for _, prior := range pool {
		if prior.EffectText == effectText {
			continue
		}
		sim := event.Cosine(embedding, prior.Embedding)
		if sim >= c.similarityThreshold {
			candidates = append(candidates, candidate{ev: prior, sim: sim})
		}
	}

	// Rank by similarity, ties by most-recent timestamp, then lowest id.
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].sim != candidates[j].sim {
			return candidates[i].sim > candidates[j].sim
		}
		if !candidates[i].ev.Timestamp.Equal(candidates[j].ev.Timestamp) {
			return candidates[i].ev.Timestamp.After(candidates[j].ev.Timestamp)
		}
		return candidates[i].ev.ID < candidates[j].ev.ID
	})

	if len(candidates) > c.maxPotentialCauses {
		candidates = candidates[:c.maxPotentialCauses]
	}

	return candidates, nil
}
