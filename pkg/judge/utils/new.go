// Package judgeutils is the judge utility package
package judgeutils

import (
	"fmt"
	"os"
	"time"

	"github.com/braidhq/braid/pkg/judge"
	"github.com/braidhq/braid/pkg/judge/ollama"
	"github.com/braidhq/braid/pkg/judge/openai"
)

type NewJudgeOpts struct {
	ProviderType string
	TargetURL    string
	Model        string
	APIKey       string
	Temperature  float64
	Timeout      time.Duration
}

// NewJudge builds a judge for the configured provider. The API key falls
// back to OPENAI_API_KEY when not set explicitly.
func NewJudge(o *NewJudgeOpts) (judge.Judge, error) {
	switch o.ProviderType {
	case "openai", "":
		apiKey := o.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		return openai.NewJudge(openai.Config{
			APIKey:      apiKey,
			BaseURL:     o.TargetURL,
			Model:       o.Model,
			Temperature: o.Temperature,
			Timeout:     o.Timeout,
		})
	case "ollama":
		return ollama.NewJudge(ollama.Config{
			BaseURL: o.TargetURL,
			Model:   o.Model,
			Timeout: o.Timeout,
		})
	default:
		return nil, fmt.Errorf("unsupported judge provider: %s", o.ProviderType)
	}
}
