package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, _, exists, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing file")
	}
	if cfg.Server.Bind != defaultBind {
		t.Fatalf("expected default bind, got %q", cfg.Server.Bind)
	}
	if cfg.Providers.Kling.PollIntervalSeconds != defaultKlingPollInterval {
		t.Fatalf("expected default poll interval, got %d", cfg.Providers.Kling.PollIntervalSeconds)
	}
	if cfg.Providers.OpenRouter.Models["chat"] == "" {
		t.Fatal("expected default chat model")
	}
}

func TestLoadMergesModelOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[providers.openrouter.models]
chat = "custom/model"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists=true")
	}
	if cfg.Providers.OpenRouter.Models["chat"] != "custom/model" {
		t.Fatalf("override lost: %q", cfg.Providers.OpenRouter.Models["chat"])
	}
	if cfg.Providers.OpenRouter.Models["think"] == "" {
		t.Fatal("expected think model to fall back to default")
	}
}

func TestValidateRejectsHalfKlingKeyPair(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	cfg.Providers.Kling.AccessKey = "only-access"
	cfg.Providers.Kling.SecretKey = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for half key pair")
	}
}

func TestValidateRejectsCostAboveCap(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	cfg.Providers.Kling.CostPerVideo = cfg.Providers.Kling.DailyCap + 1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for cost above cap")
	}
}

func TestEnvFallbackFillsCredential(t *testing.T) {
	t.Setenv("TAVILY_API_KEY", "tvly-test")
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Providers.Tavily.APIKey != "tvly-test" {
		t.Fatalf("expected env credential, got %q", cfg.Providers.Tavily.APIKey)
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	if _, _, exists, err := Load(path); err != nil || !exists {
		t.Fatalf("sample config did not load cleanly: exists=%v err=%v", exists, err)
	}
}
