package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Server contains the HTTP API bind address and request timing.
type Server struct {
	Bind                  string `toml:"bind"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
}

// Paths contains directory configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
}

// OpenRouter contains the primary text-completion provider settings.
type OpenRouter struct {
	APIKey                  string            `toml:"api_key"`
	BaseURL                 string            `toml:"base_url"`
	Referer                 string            `toml:"referer"`
	Title                   string            `toml:"title"`
	Models                  map[string]string `toml:"models"`
	TimeoutSeconds          int               `toml:"timeout_seconds"`
	ReasoningTimeoutSeconds int               `toml:"reasoning_timeout_seconds"`
	MaxTokens               int               `toml:"max_tokens"`
}

// ModelFor returns the upstream model slug for a mode, falling back to the
// chat model for modes with no explicit mapping.
func (o OpenRouter) ModelFor(mode string) string {
	if model, ok := o.Models[mode]; ok && model != "" {
		return model
	}
	return o.Models["chat"]
}

// Cerebras contains the fallback text-completion provider settings.
type Cerebras struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// HuggingFace contains the inference API settings for image and video models.
type HuggingFace struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	ImageModel     string `toml:"image_model"`
	VideoModel     string `toml:"video_model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	LoadingRetries int    `toml:"loading_retries"`
}

// Stability contains the paid image fallback settings.
type Stability struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	OutputFormat   string `toml:"output_format"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Kling contains the paid video provider settings, including the advisory
// daily quota used by the credits endpoint.
type Kling struct {
	AccessKey           string `toml:"access_key"`
	SecretKey           string `toml:"secret_key"`
	BaseURL             string `toml:"base_url"`
	Model               string `toml:"model"`
	DurationSeconds     int    `toml:"duration_seconds"`
	AspectRatio         string `toml:"aspect_ratio"`
	PollIntervalSeconds int    `toml:"poll_interval_seconds"`
	PollAttempts        int    `toml:"poll_attempts"`
	DailyCap            int    `toml:"daily_cap"`
	CostPerVideo        int    `toml:"cost_per_video"`
}

// Pollinations contains the free, credential-less fallback endpoints.
type Pollinations struct {
	ImageBaseURL string `toml:"image_base_url"`
	VideoWidth   int    `toml:"video_width"`
	VideoHeight  int    `toml:"video_height"`
}

// Tavily contains the web-search augmentation settings.
type Tavily struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	MaxResults     int    `toml:"max_results"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Providers groups all upstream provider settings.
type Providers struct {
	OpenRouter   OpenRouter   `toml:"openrouter"`
	Cerebras     Cerebras     `toml:"cerebras"`
	HuggingFace  HuggingFace  `toml:"huggingface"`
	Stability    Stability    `toml:"stability"`
	Kling        Kling        `toml:"kling"`
	Pollinations Pollinations `toml:"pollinations"`
	Tavily       Tavily       `toml:"tavily"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for prism.
//
// Configuration sections by subsystem:
//   - Server: HTTP API bind address and request timeout
//   - Paths: data (SQLite) and log directories
//   - Providers: one subsection per upstream AI/service API
//   - Logging: log format and level
type Config struct {
	Server    Server    `toml:"server"`
	Paths     Paths     `toml:"paths"`
	Providers Providers `toml:"providers"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/prism/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and credentials resolved.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("prism.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories required for daemon operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
