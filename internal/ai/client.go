// Package ai wraps the external text-generation backend behind a single
// Generate call. Unlike the state and conversation layers, failures here are
// not swallowed: connection, timeout, and parameter errors are logged and
// returned to the caller, which owns retry and fallback policy.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sift-dev/sift/internal/config"
	"github.com/sift-dev/sift/internal/log"
)

// Error kinds surfaced to callers. Inspect with errors.Is.
var (
	ErrConnection    = errors.New("ai: connection failed")
	ErrTimeout       = errors.New("ai: request timed out")
	ErrInvalidParams = errors.New("ai: invalid parameters")
)

// Options carries the optional parameters of Generate. Zero values fall back
// to the configured defaults.
type Options struct {
	SystemPrompt  string
	MaxTokens     int
	Temperature   float64
	ModelOverride string
}

// Message is one chat message in the request payload.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Client talks to an OpenAI-compatible chat-completions endpoint.
type Client struct {
	cfg    config.AIConfig
	http   *http.Client
	logger *log.Logger
}

// NewClient creates a Client from the AI section of the configuration.
func NewClient(cfg config.AIConfig, logger *log.Logger) *Client {
	return &Client{
		cfg: cfg,
		http: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		logger: logger,
	}
}

// Generate sends the prompt (with optional context messages preceding it) to
// the backend and returns the generated text.
func (c *Client) Generate(ctx context.Context, prompt string, contextMessages []Message, opts Options) (string, error) {
	if prompt == "" {
		err := fmt.Errorf("%w: empty prompt", ErrInvalidParams)
		c.logFailure("", err)
		return "", err
	}

	model := c.cfg.Model
	if opts.ModelOverride != "" {
		model = opts.ModelOverride
	}
	maxTokens := c.cfg.MaxTokens
	if opts.MaxTokens > 0 {
		maxTokens = opts.MaxTokens
	}
	temperature := c.cfg.Temperature
	if opts.Temperature > 0 {
		temperature = opts.Temperature
	}

	var messages []Message
	if opts.SystemPrompt != "" {
		messages = append(messages, Message{Role: "system", Content: opts.SystemPrompt})
	}
	messages = append(messages, contextMessages...)
	messages = append(messages, Message{Role: "user", Content: prompt})

	body, err := json.Marshal(chatRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := c.cfg.BaseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		kind := ErrConnection
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			kind = ErrTimeout
		}
		wrapped := fmt.Errorf("%w: %v", kind, err)
		c.logFailure(model, wrapped)
		return "", wrapped
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		wrapped := fmt.Errorf("%w: reading response: %v", ErrConnection, err)
		c.logFailure(model, wrapped)
		return "", wrapped
	}

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		wrapped := fmt.Errorf("%w: status %d: %s", ErrInvalidParams, resp.StatusCode, truncate(respBody, 200))
		c.logFailure(model, wrapped)
		return "", wrapped
	}
	if resp.StatusCode != http.StatusOK {
		wrapped := fmt.Errorf("%w: status %d", ErrConnection, resp.StatusCode)
		c.logFailure(model, wrapped)
		return "", wrapped
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		wrapped := fmt.Errorf("%w: malformed response: %v", ErrConnection, err)
		c.logFailure(model, wrapped)
		return "", wrapped
	}
	if parsed.Error != nil {
		wrapped := fmt.Errorf("%w: %s", ErrInvalidParams, parsed.Error.Message)
		c.logFailure(model, wrapped)
		return "", wrapped
	}
	if len(parsed.Choices) == 0 {
		wrapped := fmt.Errorf("%w: empty choices", ErrConnection)
		c.logFailure(model, wrapped)
		return "", wrapped
	}

	return parsed.Choices[0].Message.Content, nil
}

func (c *Client) logFailure(model string, err error) {
	_ = c.logger.Append(log.Event{
		Event: log.EventGenerateFailed,
		Error: err.Error(),
		Data:  map[string]interface{}{"model": model},
	})
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
