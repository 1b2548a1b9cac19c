// Package huggingface implements image and video generation against the
// HuggingFace inference API. Cold models answer 503 with an estimated_time
// hint; the client waits and retries a bounded number of times.
package huggingface

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"prism/internal/providers"
)

const (
	defaultHTTPTimeout    = 120 * time.Second
	defaultLoadingRetries = 3
	defaultLoadingWait    = 20 * time.Second
	maxLoadingWait        = 60 * time.Second
)

// Config captures the runtime settings required to talk to HuggingFace.
type Config struct {
	APIKey         string
	BaseURL        string
	ImageModel     string
	VideoModel     string
	TimeoutSeconds int
	LoadingRetries int
}

// Client wraps the HuggingFace inference API.
type Client struct {
	cfg        Config
	httpClient *http.Client
	sleep      func(ctx context.Context, d time.Duration) error
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

// WithSleep overrides the loading-wait sleep, used by tests.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Client) {
		if sleep != nil {
			c.sleep = sleep
		}
	}
}

// NewClient constructs a HuggingFace client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			APIKey:         strings.TrimSpace(cfg.APIKey),
			BaseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
			ImageModel:     strings.TrimSpace(cfg.ImageModel),
			VideoModel:     strings.TrimSpace(cfg.VideoModel),
			TimeoutSeconds: cfg.TimeoutSeconds,
			LoadingRetries: cfg.LoadingRetries,
		},
		httpClient: &http.Client{Timeout: timeout},
		sleep:      sleepCtx,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.cfg.BaseURL == "" {
		client.cfg.BaseURL = "https://api-inference.huggingface.co/models"
	}
	if client.cfg.ImageModel == "" {
		client.cfg.ImageModel = "stabilityai/stable-diffusion-xl-base-1.0"
	}
	if client.cfg.VideoModel == "" {
		client.cfg.VideoModel = "ali-vilab/text-to-video-ms-1.7b"
	}
	if client.cfg.LoadingRetries <= 0 {
		client.cfg.LoadingRetries = defaultLoadingRetries
	}
	return client
}

// Name identifies the provider in chain logs.
func (c *Client) Name() string { return "huggingface" }

// Configured reports whether an API token is present.
func (c *Client) Configured() bool { return c != nil && c.cfg.APIKey != "" }

type inferenceRequest struct {
	Inputs     string `json:"inputs"`
	Parameters struct {
		Width  int `json:"width,omitempty"`
		Height int `json:"height,omitempty"`
	} `json:"parameters"`
}

type loadingResponse struct {
	Error         string  `json:"error"`
	EstimatedTime float64 `json:"estimated_time"`
}

// GenerateImage renders the prompt on the configured image model and returns
// an IMAGE_DATA payload carrying a base64 data URI.
func (c *Client) GenerateImage(ctx context.Context, prompt string, quality providers.Quality) (string, error) {
	if !c.Configured() {
		return "", providers.Wrap(providers.ErrUnconfigured, c.Name(), "image", nil)
	}
	payload := inferenceRequest{Inputs: prompt}
	payload.Parameters.Width, payload.Parameters.Height = quality.Dimensions()

	raw, contentType, err := c.infer(ctx, c.cfg.ImageModel, payload)
	if err != nil {
		return "", err
	}
	if contentType == "" {
		contentType = "image/png"
	}
	return providers.EncodeImage(dataURI(contentType, raw)), nil
}

// GenerateVideo renders the prompt on the configured video model and returns
// a VIDEO_DATA payload carrying a base64 data URI.
func (c *Client) GenerateVideo(ctx context.Context, prompt string) (string, error) {
	if !c.Configured() {
		return "", providers.Wrap(providers.ErrUnconfigured, c.Name(), "video", nil)
	}
	raw, contentType, err := c.infer(ctx, c.cfg.VideoModel, inferenceRequest{Inputs: prompt})
	if err != nil {
		return "", err
	}
	if contentType == "" {
		contentType = "video/mp4"
	}
	return providers.EncodeVideo(dataURI(contentType, raw)), nil
}

// infer posts the request to the model endpoint and returns the raw media
// bytes. A 503 with an estimated_time body means the model is still loading;
// the client waits that long (capped) and tries again.
func (c *Client) infer(ctx context.Context, model string, payload inferenceRequest) ([]byte, string, error) {
	endpoint, err := url.JoinPath(c.cfg.BaseURL, model)
	if err != nil {
		return nil, "", fmt.Errorf("huggingface infer: build url: %w", err)
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, "", fmt.Errorf("huggingface infer: encode body: %w", err)
	}

	attempts := c.cfg.LoadingRetries + 1
	for attempt := 1; attempt <= attempts; attempt++ {
		raw, contentType, wait, err := c.inferOnce(ctx, endpoint, encoded)
		if err != nil {
			return nil, "", err
		}
		if wait <= 0 {
			return raw, contentType, nil
		}
		if attempt == attempts {
			return nil, "", providers.Wrap(providers.ErrUnavailable, c.Name(), "infer",
				fmt.Errorf("model %s still loading after %d attempts", model, attempts))
		}
		if err := c.sleep(ctx, wait); err != nil {
			return nil, "", err
		}
	}
	return nil, "", providers.Wrap(providers.ErrUnavailable, c.Name(), "infer", nil)
}

func (c *Client) inferOnce(ctx context.Context, endpoint string, encoded []byte) (raw []byte, contentType string, wait time.Duration, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, "", 0, fmt.Errorf("huggingface infer: new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", 0, providers.Wrap(providers.ErrUnavailable, c.Name(), "infer", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", 0, fmt.Errorf("huggingface infer: read body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, resp.Header.Get("Content-Type"), 0, nil
	case resp.StatusCode == http.StatusServiceUnavailable:
		var loading loadingResponse
		if json.Unmarshal(body, &loading) == nil && strings.Contains(strings.ToLower(loading.Error), "loading") {
			return nil, "", loadingWait(loading.EstimatedTime), nil
		}
		fallthrough
	default:
		return nil, "", 0, providers.Wrap(providers.ErrUnavailable, c.Name(), "infer",
			fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}
}

func loadingWait(estimatedSeconds float64) time.Duration {
	wait := time.Duration(estimatedSeconds * float64(time.Second))
	if wait <= 0 {
		return defaultLoadingWait
	}
	if wait > maxLoadingWait {
		return maxLoadingWait
	}
	return wait
}

func dataURI(contentType string, raw []byte) string {
	// Strip any charset suffix before embedding.
	if idx := strings.IndexByte(contentType, ';'); idx >= 0 {
		contentType = contentType[:idx]
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(raw)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
