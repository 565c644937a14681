// Package judge defines the causality judge capability: given two sequential
// event texts, decide whether they belong to the same workflow or causal
// sequence and, if so, describe the relationship in one short phrase.
//
// Judges are nondeterministic and unreliable by nature. Callers must treat
// every judge failure as "no link" — a judge outage degrades link quality,
// never correctness.
package judge

import (
	"context"
	"fmt"
	"strings"
)

// Verdict is the outcome of a causality judgement.
type Verdict struct {
	// Linked reports whether the judge affirmed a causal relationship.
	Linked bool

	// Relationship is the judge's one-phrase description when Linked.
	Relationship string
}

// Judge decides whether a preceding event caused a subsequent one.
type Judge interface {
	// Judge returns the verdict for the (cause, effect) pair. Transport or
	// protocol errors are returned as errors; callers absorb them as no-link.
	Judge(ctx context.Context, causeText, effectText string) (Verdict, error)

	// Close releases any resources held by the judge.
	Close() error
}

// Prompt renders the causality question put to the model for a pair of events.
func Prompt(causeText, effectText string) string {
	return fmt.Sprintf(
		"Consider these two sequential events:\n"+
			"1. %q\n"+
			"2. %q\n\n"+
			"Are these events part of the same workflow or narrative sequence? This includes:\n"+
			"- Direct causal relationships (A caused B)\n"+
			"- Sequential steps in a process (A then B)\n"+
			"- Related actions in a workflow\n\n"+
			"If they ARE related, briefly describe their relationship in one sentence. "+
			"If they are NOT related or are completely independent, respond with \"No.\"",
		strings.ToLower(causeText), strings.ToLower(effectText),
	)
}

// ParseResponse interprets a raw model reply. Empty replies and replies
// beginning with a negation token read as no-link; anything else is the
// relationship phrase.
func ParseResponse(raw string) Verdict {
	reply := strings.TrimSpace(raw)
	if reply == "" {
		return Verdict{}
	}
	if strings.HasPrefix(strings.ToLower(reply), "no") {
		return Verdict{}
	}
	return Verdict{Linked: true, Relationship: reply}
}
