package memory

import (
	"context"

	"go.uber.org/zap"

	"github.com/braidhq/braid/pkg/judge"
)

// linkCause decides the new event's causal edge from the ordered candidate
// list. The first candidate the judge affirms wins. When no candidate wins
// but the top candidate is extremely similar, a soft link is attached so dry
// system-log sequences still chain. Otherwise the event is a root.
//
// Every judge failure reads as "no link" — never as a hard error.
func (c *Core) linkCause(ctx context.Context, effectText string, candidates []candidate) (causeID *int64, relationship *string, softLinked bool) {
	for _, cand := range candidates {
		verdict, err := c.judgeCandidate(ctx, cand.ev.EffectText, effectText)
		if err != nil {
			c.logger.Debug("judge call failed, treating as no link",
				zap.Int64("candidate_id", cand.ev.ID),
				zap.Error(err),
			)
			continue
		}
		if !verdict.Linked {
			continue
		}

		id := cand.ev.ID
		rel := verdict.Relationship
		c.logger.Debug("causal link established",
			zap.Int64("cause_id", id),
			zap.String("relationship", rel),
		)
		return &id, &rel, false
	}

	if len(candidates) > 0 && candidates[0].sim >= c.softLinkThreshold {
		id := candidates[0].ev.ID
		rel := SoftLinkRelationship
		c.logger.Debug("soft link attached",
			zap.Int64("cause_id", id),
			zap.Float64("similarity", candidates[0].sim),
		)
		return &id, &rel, true
	}

	return nil, nil, false
}

// judgeCandidate runs one judgement under the external call timeout.
func (c *Core) judgeCandidate(ctx context.Context, causeText, effectText string) (judge.Verdict, error) {
	ctx, cancel := context.WithTimeout(ctx, c.externalTimeout)
	defer cancel()
	return c.judge.Judge(ctx, causeText, effectText)
}
