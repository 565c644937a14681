package testutils

import (
	"context"
	"fmt"

	"github.com/braidhq/braid/pkg/judge"
)

// MockJudge is a test judge with scripted verdicts.
type MockJudge struct {
	// Relationships maps "cause|effect" to an affirmative phrase.
	// Pairs not present read as no-link.
	Relationships map[string]string

	// AffirmAll makes every pair linked with a generic phrase.
	AffirmAll bool

	// FailAll simulates a judge outage: every call errors.
	FailAll bool

	// Calls counts Judge invocations.
	Calls int
}

func NewMockJudge() *MockJudge {
	return &MockJudge{
		Relationships: make(map[string]string),
	}
}

// Affirm scripts an affirmative verdict for a (cause, effect) pair.
func (m *MockJudge) Affirm(causeText, effectText, relationship string) {
	m.Relationships[causeText+"|"+effectText] = relationship
}

func (m *MockJudge) Judge(_ context.Context, causeText, effectText string) (judge.Verdict, error) {
	m.Calls++

	if m.FailAll {
		return judge.Verdict{}, fmt.Errorf("mock judge outage")
	}
	if m.AffirmAll {
		return judge.Verdict{Linked: true, Relationship: "one step led to the next"}, nil
	}

	if rel, ok := m.Relationships[causeText+"|"+effectText]; ok {
		return judge.Verdict{Linked: true, Relationship: rel}, nil
	}
	return judge.Verdict{}, nil
}

func (m *MockJudge) Close() error {
	return nil
}
