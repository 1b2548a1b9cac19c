// Package kling implements the paid text-to-video provider. Generation is
// asynchronous: the client submits a task, polls until a terminal status, and
// records an advisory usage charge on success. Quota and payment failures are
// tagged with the billing marker so callers surface them instead of falling
// back silently.
package kling

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

	"github.com/golang-jwt/jwt/v5"

	"prism/internal/poll"
	"prism/internal/providers"
)

const (
	defaultHTTPTimeout  = 60 * time.Second
	defaultPollInterval = 15 * time.Second
	defaultPollAttempts = 10
	tokenLifetime       = 30 * time.Minute
	tokenNotBeforeSkew  = 5 * time.Second
)

// UsageRecorder receives the advisory per-video charge after a successful
// generation.
type UsageRecorder interface {
	AddUsage(ctx context.Context, units int) (int, error)
}

// Config captures the runtime settings required to talk to Kling.
type Config struct {
	AccessKey           string
	SecretKey           string
	BaseURL             string
	Model               string
	DurationSeconds     int
	AspectRatio         string
	PollIntervalSeconds int
	PollAttempts        int
	CostPerVideo        int
	TimeoutSeconds      int
}

// Client wraps the Kling video generation API.
type Client struct {
	cfg        Config
	httpClient *http.Client
	usage      UsageRecorder
	now        func() time.Time

	pollInterval time.Duration
	pollAttempts int
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

// WithPolling overrides the poll cadence, used by tests.
func WithPolling(interval time.Duration, attempts int) Option {
	return func(c *Client) {
		if interval > 0 {
			c.pollInterval = interval
		}
		if attempts > 0 {
			c.pollAttempts = attempts
		}
	}
}

// WithClock overrides the token clock, used by tests.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// NewClient constructs a Kling client. The usage recorder may be nil, in
// which case successful generations are not charged.
func NewClient(cfg Config, usage UsageRecorder, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			AccessKey:           strings.TrimSpace(cfg.AccessKey),
			SecretKey:           strings.TrimSpace(cfg.SecretKey),
			BaseURL:             strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
			Model:               strings.TrimSpace(cfg.Model),
			DurationSeconds:     cfg.DurationSeconds,
			AspectRatio:         strings.TrimSpace(cfg.AspectRatio),
			PollIntervalSeconds: cfg.PollIntervalSeconds,
			PollAttempts:        cfg.PollAttempts,
			CostPerVideo:        cfg.CostPerVideo,
			TimeoutSeconds:      cfg.TimeoutSeconds,
		},
		httpClient:   &http.Client{Timeout: timeout},
		usage:        usage,
		now:          time.Now,
		pollInterval: defaultPollInterval,
		pollAttempts: defaultPollAttempts,
	}
	if cfg.PollIntervalSeconds > 0 {
		client.pollInterval = time.Duration(cfg.PollIntervalSeconds) * time.Second
	}
	if cfg.PollAttempts > 0 {
		client.pollAttempts = cfg.PollAttempts
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.cfg.BaseURL == "" {
		client.cfg.BaseURL = "https://api.klingai.com"
	}
	if client.cfg.Model == "" {
		client.cfg.Model = "kling-v1"
	}
	if client.cfg.DurationSeconds <= 0 {
		client.cfg.DurationSeconds = 5
	}
	if client.cfg.AspectRatio == "" {
		client.cfg.AspectRatio = "16:9"
	}
	return client
}

// Name identifies the provider in chain logs.
func (c *Client) Name() string { return "kling" }

// Configured reports whether both halves of the key pair are present.
func (c *Client) Configured() bool {
	return c != nil && c.cfg.AccessKey != "" && c.cfg.SecretKey != ""
}

// apiToken mints a short-lived HS256 bearer token. Kling validates iss/exp/nbf
// claims; the not-before is backdated slightly to tolerate clock skew.
func (c *Client) apiToken() (string, error) {
	now := c.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss": c.cfg.AccessKey,
		"exp": now.Add(tokenLifetime).Unix(),
		"nbf": now.Add(-tokenNotBeforeSkew).Unix(),
	})
	signed, err := token.SignedString([]byte(c.cfg.SecretKey))
	if err != nil {
		return "", fmt.Errorf("kling token: sign: %w", err)
	}
	return signed, nil
}

type submitRequest struct {
	Model       string `json:"model"`
	Prompt      string `json:"prompt"`
	Duration    string `json:"duration"`
	AspectRatio string `json:"aspect_ratio"`
}

type apiEnvelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type taskData struct {
	TaskID     string `json:"task_id"`
	TaskStatus string `json:"task_status"`
	TaskResult struct {
		Videos []struct {
			URL string `json:"url"`
		} `json:"videos"`
	} `json:"task_result"`
}

// GenerateVideo submits a generation task and polls until it finishes. The
// returned string is a VIDEO_DATA payload carrying the hosted video URL.
func (c *Client) GenerateVideo(ctx context.Context, prompt string) (string, error) {
	if !c.Configured() {
		return "", providers.Wrap(providers.ErrUnconfigured, c.Name(), "video", nil)
	}

	taskID, err := c.submit(ctx, prompt)
	if err != nil {
		return "", err
	}

	videoURL, err := poll.Until(ctx, c.pollInterval, c.pollAttempts, func(ctx context.Context) (string, bool, error) {
		task, err := c.taskStatus(ctx, taskID)
		if err != nil {
			return "", false, err
		}
		switch strings.ToLower(task.TaskStatus) {
		case "succeed", "success":
			if len(task.TaskResult.Videos) == 0 || task.TaskResult.Videos[0].URL == "" {
				return "", false, providers.Wrap(providers.ErrUnavailable, c.Name(), "poll",
					fmt.Errorf("task %s finished without a video url", taskID))
			}
			return task.TaskResult.Videos[0].URL, true, nil
		case "failed":
			return "", false, providers.Wrap(providers.ErrUnavailable, c.Name(), "poll",
				fmt.Errorf("task %s failed", taskID))
		default:
			return "", false, nil
		}
	})
	if err != nil {
		if errors.Is(err, poll.ErrAttemptsExhausted) {
			return "", providers.Wrap(providers.ErrUnavailable, c.Name(), "poll",
				fmt.Errorf("task %s not finished after %d polls", taskID, c.pollAttempts))
		}
		return "", err
	}

	if c.usage != nil && c.cfg.CostPerVideo > 0 {
		// Advisory charge; a failed write must not fail a finished video.
		_, _ = c.usage.AddUsage(ctx, c.cfg.CostPerVideo)
	}
	return providers.EncodeVideo(videoURL), nil
}

func (c *Client) submit(ctx context.Context, prompt string) (string, error) {
	payload := submitRequest{
		Model:       c.cfg.Model,
		Prompt:      prompt,
		Duration:    fmt.Sprintf("%d", c.cfg.DurationSeconds),
		AspectRatio: c.cfg.AspectRatio,
	}
	data, err := c.call(ctx, http.MethodPost, "/v1/videos/text2video", payload)
	if err != nil {
		return "", err
	}
	var task taskData
	if err := json.Unmarshal(data, &task); err != nil {
		return "", fmt.Errorf("kling submit: decode task: %w", err)
	}
	if task.TaskID == "" {
		return "", providers.Wrap(providers.ErrUnavailable, c.Name(), "submit", errors.New("missing task_id"))
	}
	return task.TaskID, nil
}

func (c *Client) taskStatus(ctx context.Context, taskID string) (*taskData, error) {
	data, err := c.call(ctx, http.MethodGet, "/v1/videos/text2video/"+url.PathEscape(taskID), nil)
	if err != nil {
		return nil, err
	}
	var task taskData
	if err := json.Unmarshal(data, &task); err != nil {
		return nil, fmt.Errorf("kling poll: decode task: %w", err)
	}
	return &task, nil
}

func (c *Client) call(ctx context.Context, method, path string, payload any) (json.RawMessage, error) {
	token, err := c.apiToken()
	if err != nil {
		return nil, err
	}
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("kling request: encode body: %w", err)
		}
		body = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("kling request: new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, providers.Wrap(providers.ErrUnavailable, c.Name(), "request", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("kling request: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		upstreamErr := fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
		return nil, providers.Wrap(billingMarker(resp.StatusCode, string(raw)), c.Name(), "request", upstreamErr)
	}

	var envelope apiEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("kling request: decode envelope: %w", err)
	}
	if envelope.Code != 0 {
		upstreamErr := fmt.Errorf("api code %d: %s", envelope.Code, envelope.Message)
		marker := providers.ErrUnavailable
		if providers.IsBillingMessage(envelope.Message) {
			marker = providers.ErrBilling
		}
		return nil, providers.Wrap(marker, c.Name(), "request", upstreamErr)
	}
	return envelope.Data, nil
}

func billingMarker(status int, body string) error {
	if status == http.StatusPaymentRequired || status == http.StatusTooManyRequests || providers.IsBillingMessage(body) {
		return providers.ErrBilling
	}
	return providers.ErrUnavailable
}
