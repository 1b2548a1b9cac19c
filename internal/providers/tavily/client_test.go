package tavily

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSearchFormatsResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			APIKey     string `json:"api_key"`
			Query      string `json:"query"`
			MaxResults int    `json:"max_results"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if payload.APIKey != "tv-key" || payload.Query != "go generics" {
			t.Errorf("unexpected payload %+v", payload)
		}
		_, _ = w.Write([]byte(`{
			"answer": "Generics landed in Go 1.18.",
			"results": [
				{"title": "Go Blog", "url": "https://go.dev/blog/intro-generics", "content": "An introduction to generics."},
				{"title": "Spec", "url": "https://go.dev/ref/spec", "content": "Type parameters."}
			]
		}`))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "tv-key", BaseURL: server.URL})
	got, err := client.Search(context.Background(), "go generics")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if !strings.HasPrefix(got, "Generics landed in Go 1.18.") {
		t.Fatalf("answer missing: %q", got)
	}
	if !strings.Contains(got, "[1] Go Blog") || !strings.Contains(got, "https://go.dev/ref/spec") {
		t.Fatalf("results missing: %q", got)
	}
}

func TestSearchWithoutKeyIsSilent(t *testing.T) {
	client := NewClient(Config{})
	got, err := client.Search(context.Background(), "anything")
	if err != nil || got != "" {
		t.Fatalf("expected silent empty result, got %q %v", got, err)
	}
}

func TestSearchUpstreamFailureIsSilent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "k", BaseURL: server.URL})
	got, err := client.Search(context.Background(), "q")
	if err != nil || got != "" {
		t.Fatalf("expected silent empty result, got %q %v", got, err)
	}
}

func TestFormatResultsCapsAtFive(t *testing.T) {
	resp := searchResponse{}
	for i := 0; i < 8; i++ {
		resp.Results = append(resp.Results, struct {
			Title   string `json:"title"`
			URL     string `json:"url"`
			Content string `json:"content"`
		}{Title: "t", URL: "u", Content: "c"})
	}
	got := formatResults(resp)
	if strings.Contains(got, "[6]") {
		t.Fatalf("more than five results formatted: %q", got)
	}
	if !strings.Contains(got, "[5]") {
		t.Fatalf("five results expected: %q", got)
	}
}
