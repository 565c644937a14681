package memory

import (
	"strings"

	"github.com/braidhq/braid/pkg/event"
)

// Narrate assembles an ordered causal chain into a single prose string.
//
// The chain is assumed chronological and deduplicated; the narrator does not
// re-order, deduplicate, or interpret text. Connectors alternate to avoid
// monotony. Relationships are appended in parentheses; soft-link phrases
// arrive already parenthesized and are not wrapped again.
func Narrate(chain []*event.Event) string {
	if len(chain) == 0 {
		return NoContextFound
	}

	var b strings.Builder
	b.WriteString("Initially, ")
	b.WriteString(chain[0].EffectText)
	b.WriteString(".")

	for i := 1; i < len(chain); i++ {
		ev := chain[i]

		connector := "This led to"
		if i%2 == 0 {
			connector = "which in turn caused"
		}

		b.WriteString(" ")
		b.WriteString(connector)
		b.WriteString(" ")
		b.WriteString(ev.EffectText)

		if ev.Relationship != nil && *ev.Relationship != "" {
			rel := *ev.Relationship
			b.WriteString(" ")
			if strings.HasPrefix(rel, "(") && strings.HasSuffix(rel, ")") {
				b.WriteString(rel)
			} else {
				b.WriteString("(")
				b.WriteString(rel)
				b.WriteString(")")
			}
		}

		b.WriteString(".")
	}

	return b.String()
}
