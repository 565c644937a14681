// Package ollama implements pkg/judge's Judge against Ollama's chat API.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/braidhq/braid/pkg/judge"
)

const (
	// DefaultModel is the default local judge model.
	DefaultModel = "llama3.2"

	// DefaultBaseURL is the default Ollama API URL.
	DefaultBaseURL = "http://localhost:11434"

	// DefaultTimeout bounds a single judgement call.
	DefaultTimeout = 10 * time.Second
)

// Config holds configuration for the Ollama judge.
type Config struct {
	// BaseURL is the Ollama API URL. Defaults to DefaultBaseURL.
	BaseURL string

	// Model is the chat model to use. Defaults to DefaultModel.
	Model string

	// Timeout bounds a single call. Defaults to DefaultTimeout if zero.
	Timeout time.Duration
}

// Judge wraps Ollama's chat API.
type Judge struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
	Done    bool        `json:"done"`
	Error   string      `json:"error"`
}

// NewJudge creates a judge backed by a local Ollama server.
func NewJudge(cfg Config) (*Judge, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	return &Judge{
		baseURL: baseURL,
		model:   model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// Judge asks the model whether causeText led to effectText.
func (j *Judge) Judge(ctx context.Context, causeText, effectText string) (judge.Verdict, error) {
	request := chatRequest{
		Model: j.model,
		Messages: []chatMessage{
			{Role: "user", Content: judge.Prompt(causeText, effectText)},
		},
		Stream: false,
	}

	payload, err := json.Marshal(request)
	if err != nil {
		return judge.Verdict{}, fmt.Errorf("marshal ollama request: %w", err)
	}

	target := strings.TrimRight(j.baseURL, "/") + "/api/chat"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(payload))
	if err != nil {
		return judge.Verdict{}, fmt.Errorf("create ollama request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := j.httpClient.Do(req)
	if err != nil {
		return judge.Verdict{}, fmt.Errorf("send ollama request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return judge.Verdict{}, fmt.Errorf("ollama status %d: %s", resp.StatusCode, string(body))
	}

	var response chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return judge.Verdict{}, fmt.Errorf("decode ollama response: %w", err)
	}
	if response.Error != "" {
		return judge.Verdict{}, fmt.Errorf("ollama error: %s", response.Error)
	}

	return judge.ParseResponse(response.Message.Content), nil
}

// Close releases resources held by the judge.
func (j *Judge) Close() error {
	return nil
}

// Ensure Judge implements judge.Judge
var _ judge.Judge = (*Judge)(nil)
