// Package openrouter implements the Completer interface against the
// OpenRouter chat-completions API.
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"portfolio-intel/internal/llm"
	"portfolio-intel/internal/store"
	"portfolio-intel/internal/trace"
)

// Client calls OpenRouter's chat-completions endpoint. The API key is read
// from the environment on each call, never cached.
type Client struct {
	cfg      *store.Config
	endpoint string
	http     *http.Client
}

// NewClient creates an OpenRouter-backed completer.
func NewClient(cfg *store.Config) *Client {
	// default public endpoint
	endpoint := "https://openrouter.ai/api/v1/chat/completions"
	// If you route through a proxy, set endpoint via OPENROUTER_API_ENDPOINT env var
	if ep := os.Getenv("OPENROUTER_API_ENDPOINT"); ep != "" {
		endpoint = ep
	}
	timeout := time.Duration(cfg.LLM.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		cfg:      cfg,
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends a system+user prompt pair and returns the first choice's
// message content.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	ctx, span := trace.StartSpan(ctx, "openrouter-api-call")
	defer span.End()

	apiKey := os.Getenv("OPENROUTER_API_KEY")
	if apiKey == "" {
		return "", llm.ErrAPIKeyMissing
	}

	model := c.cfg.LLM.Model
	if m := os.Getenv("OPENROUTER_MODEL"); m != "" {
		model = m
	}

	reqBody := chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: float64(c.cfg.LLM.Temperature),
		MaxTokens:   c.cfg.LLM.MaxTokens,
	}

	bb, _ := json.Marshal(reqBody)
	req, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, bytes.NewReader(bb))
	if err != nil {
		return "", &llm.TransportError{Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("HTTP-Referer", "http://localhost:8000")
	req.Header.Set("X-Title", "Portfolio News Analyzer")

	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			return "", fmt.Errorf("%w: %v", llm.ErrTimeout, err)
		}
		return "", &llm.TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", &llm.UpstreamError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &llm.UpstreamError{StatusCode: resp.StatusCode, Body: "unparseable response: " + string(body)}
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", &llm.UpstreamError{StatusCode: resp.StatusCode, Body: "no completion content in response"}
	}
	return parsed.Choices[0].Message.Content, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
