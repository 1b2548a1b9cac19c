package huggingface

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

func noSleep(ctx context.Context, d time.Duration) error { return nil }

func TestGenerateImageReturnsDataURI(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/test/image-model") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var payload struct {
			Inputs     string `json:"inputs"`
			Parameters struct {
				Width  int `json:"width"`
				Height int `json:"height"`
			} `json:"parameters"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if payload.Inputs != "a red fox" {
			t.Errorf("unexpected prompt %q", payload.Inputs)
		}
		if payload.Parameters.Width != 1280 || payload.Parameters.Height != 1280 {
			t.Errorf("hd dimensions not sent: %dx%d", payload.Parameters.Width, payload.Parameters.Height)
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte{0x89, 'P', 'N', 'G'})
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "k", BaseURL: server.URL, ImageModel: "test/image-model"}, WithSleep(noSleep))
	got, err := client.GenerateImage(context.Background(), "a red fox", providers.QualityHD)
	if err != nil {
		t.Fatalf("GenerateImage: %v", err)
	}
	if !strings.HasPrefix(got, providers.ImagePrefix+"data:image/png;base64,") {
		t.Fatalf("unexpected payload %q", got)
	}
}

func TestGenerateVideoRetriesWhileModelLoads(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":"Model is currently loading","estimated_time":12.5}`))
			return
		}
		w.Header().Set("Content-Type", "video/mp4")
		_, _ = w.Write([]byte("mp4bytes"))
	}))
	defer server.Close()

	var waits []time.Duration
	client := NewClient(Config{APIKey: "k", BaseURL: server.URL, LoadingRetries: 3},
		WithSleep(func(ctx context.Context, d time.Duration) error {
			waits = append(waits, d)
			return nil
		}))

	got, err := client.GenerateVideo(context.Background(), "waves at sunset")
	if err != nil {
		t.Fatalf("GenerateVideo: %v", err)
	}
	if !strings.HasPrefix(got, providers.VideoPrefix+"data:video/mp4;base64,") {
		t.Fatalf("unexpected payload %q", got)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls.Load())
	}
	for _, wait := range waits {
		if wait != 12500*time.Millisecond {
			t.Fatalf("estimated_time not honored: %v", wait)
		}
	}
}

func TestGenerateImageGivesUpAfterLoadingBudget(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"Model is currently loading","estimated_time":1}`))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "k", BaseURL: server.URL, LoadingRetries: 2}, WithSleep(noSleep))
	_, err := client.GenerateImage(context.Background(), "p", providers.QualityStandard)
	if err == nil || !strings.Contains(err.Error(), "still loading") {
		t.Fatalf("expected loading exhaustion, got %v", err)
	}
}

func TestGenerateImagePlain503IsNotRetried(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "service down", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "k", BaseURL: server.URL}, WithSleep(noSleep))
	_, err := client.GenerateImage(context.Background(), "p", providers.QualityStandard)
	if err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Fatalf("plain 503 retried %d times", calls.Load())
	}
}

func TestUnconfigured(t *testing.T) {
	client := NewClient(Config{})
	if _, err := client.GenerateImage(context.Background(), "p", providers.QualityStandard); err == nil {
		t.Fatal("expected unconfigured error")
	}
	if _, err := client.GenerateVideo(context.Background(), "p"); err == nil {
		t.Fatal("expected unconfigured error")
	}
}
