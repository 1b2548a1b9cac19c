package kling

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"prism/internal/providers"
)

type fakeUsage struct {
	total atomic.Int64
}

func (f *fakeUsage) AddUsage(ctx context.Context, units int) (int, error) {
	return int(f.total.Add(int64(units))), nil
}

func TestGenerateVideoSubmitsPollsAndCharges(t *testing.T) {
	var polls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		parsed, err := jwt.Parse(auth, func(tok *jwt.Token) (any, error) {
			return []byte("secret"), nil
		}, jwt.WithValidMethods([]string{"HS256"}))
		if err != nil || !parsed.Valid {
			t.Errorf("bad token: %v", err)
		}
		if iss, _ := parsed.Claims.GetIssuer(); iss != "access" {
			t.Errorf("unexpected issuer %q", iss)
		}

		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v1/videos/text2video":
			_, _ = w.Write([]byte(`{"code":0,"data":{"task_id":"t-1"}}`))
		case r.Method == http.MethodGet && r.URL.Path == "/v1/videos/text2video/t-1":
			if polls.Add(1) < 2 {
				_, _ = w.Write([]byte(`{"code":0,"data":{"task_id":"t-1","task_status":"processing"}}`))
				return
			}
			_, _ = w.Write([]byte(`{"code":0,"data":{"task_id":"t-1","task_status":"succeed","task_result":{"videos":[{"url":"https://cdn.kling.test/v.mp4"}]}}}`))
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))
	defer server.Close()

	usage := &fakeUsage{}
	client := NewClient(Config{
		AccessKey:    "access",
		SecretKey:    "secret",
		BaseURL:      server.URL,
		CostPerVideo: 20,
	}, usage, WithPolling(time.Millisecond, 5))

	got, err := client.GenerateVideo(context.Background(), "a drone shot of cliffs")
	if err != nil {
		t.Fatalf("GenerateVideo: %v", err)
	}
	if got != providers.VideoPrefix+"https://cdn.kling.test/v.mp4" {
		t.Fatalf("unexpected payload %q", got)
	}
	if usage.total.Load() != 20 {
		t.Fatalf("usage not charged, got %d", usage.total.Load())
	}
}

func TestGenerateVideoBillingSurfaced(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":1102,"message":"account balance not enough"}`))
	}))
	defer server.Close()

	usage := &fakeUsage{}
	client := NewClient(Config{AccessKey: "a", SecretKey: "s", BaseURL: server.URL, CostPerVideo: 20}, usage,
		WithPolling(time.Millisecond, 2))

	_, err := client.GenerateVideo(context.Background(), "p")
	if !errors.Is(err, providers.ErrBilling) {
		t.Fatalf("expected billing marker, got %v", err)
	}
	if usage.total.Load() != 0 {
		t.Fatal("failed generation must not be charged")
	}
}

func TestGenerateVideoPollBudgetExhausted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			_, _ = w.Write([]byte(`{"code":0,"data":{"task_id":"t-2"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"code":0,"data":{"task_id":"t-2","task_status":"submitted"}}`))
	}))
	defer server.Close()

	client := NewClient(Config{AccessKey: "a", SecretKey: "s", BaseURL: server.URL}, nil,
		WithPolling(time.Millisecond, 3))

	_, err := client.GenerateVideo(context.Background(), "p")
	if err == nil || !strings.Contains(err.Error(), "not finished after 3 polls") {
		t.Fatalf("expected poll exhaustion, got %v", err)
	}
}

func TestGenerateVideoFailedTask(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			_, _ = w.Write([]byte(`{"code":0,"data":{"task_id":"t-3"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"code":0,"data":{"task_id":"t-3","task_status":"failed"}}`))
	}))
	defer server.Close()

	client := NewClient(Config{AccessKey: "a", SecretKey: "s", BaseURL: server.URL}, nil,
		WithPolling(time.Millisecond, 3))

	_, err := client.GenerateVideo(context.Background(), "p")
	if err == nil || !strings.Contains(err.Error(), "failed") {
		t.Fatalf("expected task failure, got %v", err)
	}
}

func TestTokenClaims(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	client := NewClient(Config{AccessKey: "a", SecretKey: "s"}, nil, WithClock(func() time.Time { return base }))

	signed, err := client.apiToken()
	if err != nil {
		t.Fatalf("apiToken: %v", err)
	}
	parsed, err := jwt.Parse(signed, func(tok *jwt.Token) (any, error) {
		return []byte("s"), nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithTimeFunc(func() time.Time { return base }))
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	exp, _ := parsed.Claims.GetExpirationTime()
	if got := exp.Time.Sub(base); got != 30*time.Minute {
		t.Fatalf("unexpected expiry offset %v", got)
	}
	nbf, _ := parsed.Claims.GetNotBefore()
	if got := base.Sub(nbf.Time); got != 5*time.Second {
		t.Fatalf("unexpected not-before offset %v", got)
	}
}

func TestUnconfiguredWithPartialKeys(t *testing.T) {
	client := NewClient(Config{AccessKey: "only-access"}, nil)
	_, err := client.GenerateVideo(context.Background(), "p")
	if !errors.Is(err, providers.ErrUnconfigured) {
		t.Fatalf("expected unconfigured marker, got %v", err)
	}
}
