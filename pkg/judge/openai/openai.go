// Package openai implements pkg/judge's Judge against OpenAI-compatible
// chat-completions endpoints (api.openai.com, LM Studio, vLLM, etc.).
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/braidhq/braid/pkg/judge"
)

const (
	// DefaultModel is the default judge model.
	DefaultModel = "gpt-3.5-turbo"

	// DefaultBaseURL is the default OpenAI API URL.
	DefaultBaseURL = "https://api.openai.com"

	// DefaultTemperature keeps judgements near-deterministic.
	DefaultTemperature = 0.1

	// DefaultTimeout bounds a single judgement call.
	DefaultTimeout = 10 * time.Second

	// maxTokens caps the reply; one phrase is all we need.
	maxTokens = 100
)

// Config holds configuration for the OpenAI judge.
type Config struct {
	// APIKey is the bearer token. May be empty for local
	// OpenAI-compatible servers that ignore authentication.
	APIKey string

	// BaseURL overrides the API URL. Defaults to DefaultBaseURL.
	BaseURL string

	// Model is the chat model to use. Defaults to DefaultModel.
	Model string

	// Temperature is the sampling temperature. Zero means DefaultTemperature.
	Temperature float64

	// Timeout bounds a single call. Defaults to DefaultTimeout if zero.
	Timeout time.Duration
}

// Judge wraps an OpenAI-compatible chat-completions API.
type Judge struct {
	apiKey      string
	baseURL     string
	model       string
	temperature float64
	httpClient  *http.Client
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewJudge creates a judge against an OpenAI-compatible endpoint.
func NewJudge(cfg Config) (*Judge, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = DefaultTemperature
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	return &Judge{
		apiKey:      cfg.APIKey,
		baseURL:     baseURL,
		model:       model,
		temperature: temperature,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// Judge asks the model whether causeText led to effectText.
func (j *Judge) Judge(ctx context.Context, causeText, effectText string) (judge.Verdict, error) {
	reqBody := chatRequest{
		Model: j.model,
		Messages: []chatMessage{
			{Role: "user", Content: judge.Prompt(causeText, effectText)},
		},
		Temperature: j.temperature,
		MaxTokens:   maxTokens,
	}

	data, err := json.Marshal(reqBody)
	if err != nil {
		return judge.Verdict{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, j.baseURL+"/v1/chat/completions", bytes.NewReader(data))
	if err != nil {
		return judge.Verdict{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if j.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+j.apiKey)
	}

	resp, err := j.httpClient.Do(req)
	if err != nil {
		return judge.Verdict{}, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return judge.Verdict{}, fmt.Errorf("judge returned status %d: %s", resp.StatusCode, string(body))
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return judge.Verdict{}, fmt.Errorf("decode response: %w", err)
	}
	if chatResp.Error != nil {
		return judge.Verdict{}, fmt.Errorf("judge error: %s", chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return judge.Verdict{}, fmt.Errorf("judge returned no choices")
	}

	return judge.ParseResponse(chatResp.Choices[0].Message.Content), nil
}

// Close releases resources held by the judge.
func (j *Judge) Close() error {
	return nil
}

// Ensure Judge implements judge.Judge
var _ judge.Judge = (*Judge)(nil)
