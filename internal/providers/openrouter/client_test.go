package openrouter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"prism/internal/providers"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Referer: "https://example.test",
		Title:   "prism",
	}, WithRetry(3, time.Millisecond, 5*time.Millisecond))
}

func TestCompleteReturnsFirstChoice(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("missing bearer auth, got %q", got)
		}
		if got := r.Header.Get("X-Title"); got != "prism" {
			t.Errorf("missing title header, got %q", got)
		}
		var payload struct {
			Model    string                  `json:"model"`
			Messages []providers.ChatMessage `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if payload.Model != "test/model" || len(payload.Messages) != 1 {
			t.Errorf("unexpected payload %+v", payload)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"  hello  "}}]}`))
	}))

	got, err := client.Complete(context.Background(), "test/model", []providers.ChatMessage{{Role: "user", Content: "hi"}})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "hello" {
		t.Fatalf("unexpected content %q", got)
	}
}

func TestCompleteRetriesOnServerError(t *testing.T) {
	var calls atomic.Int64
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "upstream exploded", http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"recovered"}}]}`))
	}))

	got, err := client.Complete(context.Background(), "m", []providers.ChatMessage{{Role: "user", Content: "q"}})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "recovered" {
		t.Fatalf("unexpected content %q", got)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestCompleteDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int64
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "payment required", http.StatusPaymentRequired)
	}))

	_, err := client.Complete(context.Background(), "m", []providers.ChatMessage{{Role: "user", Content: "q"}})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Fatalf("expected single attempt, got %d", calls.Load())
	}
	if !strings.Contains(err.Error(), "402") {
		t.Fatalf("status missing from error: %v", err)
	}
}

func TestCompleteUnconfigured(t *testing.T) {
	client := NewClient(Config{})
	_, err := client.Complete(context.Background(), "m", []providers.ChatMessage{{Role: "user", Content: "q"}})
	if err == nil || !strings.Contains(err.Error(), "not configured") {
		t.Fatalf("expected unconfigured error, got %v", err)
	}
}

func TestCredits(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/credits" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"data":{"total_credits":10.5,"total_usage":2.25}}`))
	}))

	credits, err := client.Credits(context.Background())
	if err != nil {
		t.Fatalf("Credits: %v", err)
	}
	if credits.TotalCredits != 10.5 || credits.TotalUsage != 2.25 || credits.Remaining != 8.25 {
		t.Fatalf("unexpected credits %+v", credits)
	}
}

func TestParseRetryAfterSeconds(t *testing.T) {
	if delay, ok := parseRetryAfter("7"); !ok || delay != 7*time.Second {
		t.Fatalf("unexpected retry-after %v %v", delay, ok)
	}
	if _, ok := parseRetryAfter(""); ok {
		t.Fatal("empty header should not parse")
	}
}
