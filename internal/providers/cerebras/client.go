// Package cerebras implements the fallback text-completion provider against
// the Cerebras OpenAI-compatible inference API.
package cerebras

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"prism/internal/providers"
)

const defaultHTTPTimeout = 60 * time.Second

// Config captures the runtime settings required to talk to Cerebras.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	MaxTokens      int
	TimeoutSeconds int
}

// Client wraps the Cerebras chat completion API.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs a Cerebras client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			APIKey:         strings.TrimSpace(cfg.APIKey),
			BaseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
			Model:          strings.TrimSpace(cfg.Model),
			MaxTokens:      cfg.MaxTokens,
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.cfg.BaseURL == "" {
		client.cfg.BaseURL = "https://api.cerebras.ai/v1"
	}
	if client.cfg.Model == "" {
		client.cfg.Model = "llama-3.3-70b"
	}
	return client
}

// Name identifies the provider in chain logs.
func (c *Client) Name() string { return "cerebras" }

// Configured reports whether an API key is present.
func (c *Client) Configured() bool { return c != nil && c.cfg.APIKey != "" }

type chatRequest struct {
	Model     string                  `json:"model"`
	Messages  []providers.ChatMessage `json:"messages"`
	MaxTokens int                     `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete issues a chat completion. The model argument selects the upstream
// model when non-empty; otherwise the configured default is used. Cerebras
// serves its own model catalog, so OpenRouter-style slugs are ignored.
func (c *Client) Complete(ctx context.Context, model string, messages []providers.ChatMessage) (string, error) {
	if !c.Configured() {
		return "", providers.Wrap(providers.ErrUnconfigured, c.Name(), "complete", nil)
	}
	if len(messages) == 0 {
		return "", errors.New("cerebras complete: messages required")
	}
	model = strings.TrimSpace(model)
	if model == "" || strings.Contains(model, "/") {
		model = c.cfg.Model
	}

	endpoint, err := url.JoinPath(c.cfg.BaseURL, "chat/completions")
	if err != nil {
		return "", fmt.Errorf("cerebras complete: build url: %w", err)
	}
	encoded, err := json.Marshal(chatRequest{
		Model:     model,
		Messages:  messages,
		MaxTokens: c.cfg.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("cerebras complete: encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("cerebras complete: new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", providers.Wrap(providers.ErrUnavailable, c.Name(), "complete", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("cerebras complete: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", providers.Wrap(providers.ErrUnavailable, c.Name(), "complete",
			fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}
	var decoded chatResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", fmt.Errorf("cerebras complete: decode response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return "", errors.New("cerebras complete: empty choices")
	}
	content := strings.TrimSpace(decoded.Choices[0].Message.Content)
	if content == "" {
		return "", errors.New("cerebras complete: empty content")
	}
	return content, nil
}
