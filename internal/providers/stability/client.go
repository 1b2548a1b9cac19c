// Package stability implements the paid image fallback against the Stability
// AI image generation API.
package stability

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"prism/internal/providers"
)

const defaultHTTPTimeout = 120 * time.Second

// Config captures the runtime settings required to talk to Stability.
type Config struct {
	APIKey         string
	BaseURL        string
	OutputFormat   string
	TimeoutSeconds int
}

// Client wraps the Stability image generation API.
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

// NewClient constructs a Stability client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			APIKey:         strings.TrimSpace(cfg.APIKey),
			BaseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
			OutputFormat:   strings.TrimSpace(cfg.OutputFormat),
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.cfg.BaseURL == "" {
		client.cfg.BaseURL = "https://api.stability.ai/v2beta/stable-image/generate/core"
	}
	if client.cfg.OutputFormat == "" {
		client.cfg.OutputFormat = "png"
	}
	return client
}

// Name identifies the provider in chain logs.
func (c *Client) Name() string { return "stability" }

// Configured reports whether an API key is present.
func (c *Client) Configured() bool { return c != nil && c.cfg.APIKey != "" }

// GenerateImage renders the prompt and returns an IMAGE_DATA payload carrying
// a base64 data URI. Stability's core endpoint picks its own dimensions, so
// the quality hint only shapes the prompt handling upstream of this call.
func (c *Client) GenerateImage(ctx context.Context, prompt string, _ providers.Quality) (string, error) {
	if !c.Configured() {
		return "", providers.Wrap(providers.ErrUnconfigured, c.Name(), "image", nil)
	}

	var form bytes.Buffer
	writer := multipart.NewWriter(&form)
	if err := writer.WriteField("prompt", prompt); err != nil {
		return "", fmt.Errorf("stability image: write form: %w", err)
	}
	if err := writer.WriteField("output_format", c.cfg.OutputFormat); err != nil {
		return "", fmt.Errorf("stability image: write form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("stability image: close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, &form)
	if err != nil {
		return "", fmt.Errorf("stability image: new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "image/*")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", providers.Wrap(providers.ErrUnavailable, c.Name(), "image", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("stability image: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		upstreamErr := fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		marker := providers.ErrUnavailable
		if resp.StatusCode == http.StatusPaymentRequired || resp.StatusCode == http.StatusTooManyRequests {
			marker = providers.ErrBilling
		}
		return "", providers.Wrap(marker, c.Name(), "image", upstreamErr)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" || strings.HasPrefix(contentType, "application/") {
		contentType = "image/" + c.cfg.OutputFormat
	}
	if idx := strings.IndexByte(contentType, ';'); idx >= 0 {
		contentType = contentType[:idx]
	}
	uri := "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(body)
	return providers.EncodeImage(uri), nil
}
