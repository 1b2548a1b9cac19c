// Package tavily implements web-search augmentation for the research modes.
// Search context is strictly best-effort: a missing key or upstream failure
// yields an empty result, never an error that would sink the request.
package tavily

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultHTTPTimeout = 30 * time.Second
	defaultMaxResults  = 5
)

// Config captures the runtime settings required to talk to Tavily.
type Config struct {
	APIKey         string
	BaseURL        string
	MaxResults     int
	TimeoutSeconds int
}

// Client wraps the Tavily search API.
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

// NewClient constructs a Tavily client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			APIKey:         strings.TrimSpace(cfg.APIKey),
			BaseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
			MaxResults:     cfg.MaxResults,
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.cfg.BaseURL == "" {
		client.cfg.BaseURL = "https://api.tavily.com"
	}
	if client.cfg.MaxResults <= 0 || client.cfg.MaxResults > defaultMaxResults {
		client.cfg.MaxResults = defaultMaxResults
	}
	return client
}

// Name identifies the provider in chain logs.
func (c *Client) Name() string { return "tavily" }

// Configured reports whether an API key is present.
func (c *Client) Configured() bool { return c != nil && c.cfg.APIKey != "" }

type searchRequest struct {
	APIKey        string `json:"api_key"`
	Query         string `json:"query"`
	SearchDepth   string `json:"search_depth"`
	IncludeAnswer bool   `json:"include_answer"`
	MaxResults    int    `json:"max_results"`
	Topic         string `json:"topic"`
}

type searchResponse struct {
	Answer  string `json:"answer"`
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}

// Search returns a formatted context block of web results for the query, or
// an empty string when no key is configured or the upstream call fails.
func (c *Client) Search(ctx context.Context, query string) (string, error) {
	if !c.Configured() {
		return "", nil
	}
	encoded, err := json.Marshal(searchRequest{
		APIKey:        c.cfg.APIKey,
		Query:         query,
		SearchDepth:   "basic",
		IncludeAnswer: true,
		MaxResults:    c.cfg.MaxResults,
		Topic:         "general",
	})
	if err != nil {
		return "", nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/search", bytes.NewReader(encoded))
	if err != nil {
		return "", nil
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", nil
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil || resp.StatusCode != http.StatusOK {
		return "", nil
	}
	var decoded searchResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", nil
	}
	return formatResults(decoded), nil
}

func formatResults(resp searchResponse) string {
	var b strings.Builder
	if answer := strings.TrimSpace(resp.Answer); answer != "" {
		b.WriteString(answer)
		b.WriteString("\n\n")
	}
	count := 0
	for _, result := range resp.Results {
		if count >= defaultMaxResults {
			break
		}
		title := strings.TrimSpace(result.Title)
		snippet := strings.TrimSpace(result.Content)
		if title == "" && snippet == "" {
			continue
		}
		count++
		fmt.Fprintf(&b, "[%d] %s\n%s\n%s\n\n", count, title, result.URL, snippet)
	}
	return strings.TrimSpace(b.String())
}
