package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"prism/internal/config"
	"prism/internal/mode"
)

func TestRootHelpListsCommands(t *testing.T) {
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"--help"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("help: %v", err)
	}
	for _, want := range []string{"serve", "search", "credits", "history", "config"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("help missing %q:\n%s", want, out.String())
		}
	}
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"config", "init", "--path", target})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("config init: %v", err)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[providers.openrouter]") {
		t.Fatalf("sample config incomplete:\n%s", data)
	}

	// A second init without --overwrite must refuse.
	cmd = newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"config", "init", "--path", target})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected overwrite refusal")
	}
}

func TestTextTimeoutSelectsKnobPerMode(t *testing.T) {
	resolver := textTimeout(config.OpenRouter{
		TimeoutSeconds:          60,
		ReasoningTimeoutSeconds: 180,
	})

	for _, m := range []mode.Mode{mode.Chat, mode.Flash, mode.Code} {
		if got := resolver(m); got != 60*time.Second {
			t.Fatalf("%s timeout = %v, want 60s", m, got)
		}
	}
	for _, m := range []mode.Mode{mode.Think, mode.Pro, mode.Analyze} {
		if got := resolver(m); got != 180*time.Second {
			t.Fatalf("%s timeout = %v, want 180s", m, got)
		}
	}
}

func TestTruncateCell(t *testing.T) {
	if got := truncateCell("short", 10); got != "short" {
		t.Fatalf("short value altered: %q", got)
	}
	got := truncateCell(strings.Repeat("x", 30), 10)
	if len([]rune(got)) != 10 || !strings.HasSuffix(got, "…") {
		t.Fatalf("truncation wrong: %q", got)
	}
	if got := truncateCell("a\nb", 10); got != "a b" {
		t.Fatalf("newline not flattened: %q", got)
	}
}

func TestSummarizeAnswer(t *testing.T) {
	if got := summarizeAnswer("IMAGE_DATA:https://x/img.png"); got != "[image] https://x/img.png" {
		t.Fatalf("image summary wrong: %q", got)
	}
	if got := summarizeAnswer("plain text"); got != "plain text" {
		t.Fatalf("plain answer altered: %q", got)
	}
}
