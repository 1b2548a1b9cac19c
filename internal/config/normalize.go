package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeServer()
	c.normalizeOpenRouter()
	c.normalizeCerebras()
	c.normalizeHuggingFace()
	c.normalizeStability()
	c.normalizeKling()
	c.normalizePollinations()
	c.normalizeTavily()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeServer() {
	c.Server.Bind = strings.TrimSpace(c.Server.Bind)
	if c.Server.Bind == "" {
		c.Server.Bind = defaultBind
	}
	if c.Server.RequestTimeoutSeconds <= 0 {
		c.Server.RequestTimeoutSeconds = defaultRequestTimeoutSeconds
	}
}

func envFallback(value string, names ...string) string {
	value = strings.TrimSpace(value)
	if value != "" {
		return value
	}
	for _, name := range names {
		if env, ok := os.LookupEnv(name); ok && strings.TrimSpace(env) != "" {
			return strings.TrimSpace(env)
		}
	}
	return ""
}

func (c *Config) normalizeOpenRouter() {
	o := &c.Providers.OpenRouter
	o.APIKey = envFallback(o.APIKey, "OPENROUTER_API_KEY")
	o.BaseURL = strings.TrimRight(strings.TrimSpace(o.BaseURL), "/")
	if o.BaseURL == "" {
		o.BaseURL = defaultOpenRouterBaseURL
	}
	o.Referer = strings.TrimSpace(o.Referer)
	if o.Referer == "" {
		o.Referer = defaultOpenRouterReferer
	}
	o.Title = strings.TrimSpace(o.Title)
	if o.Title == "" {
		o.Title = defaultOpenRouterTitle
	}
	if o.TimeoutSeconds <= 0 {
		o.TimeoutSeconds = defaultOpenRouterTimeoutSeconds
	}
	if o.ReasoningTimeoutSeconds <= 0 {
		o.ReasoningTimeoutSeconds = defaultOpenRouterReasoningTimeout
	}
	if o.MaxTokens <= 0 {
		o.MaxTokens = defaultOpenRouterMaxTokens
	}
	// Fill any mode left out of the user's model table with the default.
	models := defaultModels()
	for mode, model := range o.Models {
		if trimmed := strings.TrimSpace(model); trimmed != "" {
			models[strings.ToLower(strings.TrimSpace(mode))] = trimmed
		}
	}
	o.Models = models
}

func (c *Config) normalizeCerebras() {
	s := &c.Providers.Cerebras
	s.APIKey = envFallback(s.APIKey, "CEREBRAS_API_KEY")
	s.BaseURL = strings.TrimRight(strings.TrimSpace(s.BaseURL), "/")
	if s.BaseURL == "" {
		s.BaseURL = defaultCerebrasBaseURL
	}
	s.Model = strings.TrimSpace(s.Model)
	if s.Model == "" {
		s.Model = defaultCerebrasModel
	}
	if s.TimeoutSeconds <= 0 {
		s.TimeoutSeconds = defaultCerebrasTimeoutSeconds
	}
}

func (c *Config) normalizeHuggingFace() {
	h := &c.Providers.HuggingFace
	h.APIKey = envFallback(h.APIKey, "HF_API_TOKEN", "HUGGING_FACE_HUB_TOKEN")
	h.BaseURL = strings.TrimRight(strings.TrimSpace(h.BaseURL), "/")
	if h.BaseURL == "" {
		h.BaseURL = defaultHuggingFaceBaseURL
	}
	h.ImageModel = strings.TrimSpace(h.ImageModel)
	if h.ImageModel == "" {
		h.ImageModel = defaultHuggingFaceImageModel
	}
	h.VideoModel = strings.TrimSpace(h.VideoModel)
	if h.VideoModel == "" {
		h.VideoModel = defaultHuggingFaceVideoModel
	}
	if h.TimeoutSeconds <= 0 {
		h.TimeoutSeconds = defaultHuggingFaceTimeoutSeconds
	}
	if h.LoadingRetries <= 0 {
		h.LoadingRetries = defaultHuggingFaceLoadingRetries
	}
}

func (c *Config) normalizeStability() {
	s := &c.Providers.Stability
	s.APIKey = envFallback(s.APIKey, "STABILITY_API_KEY")
	s.BaseURL = strings.TrimRight(strings.TrimSpace(s.BaseURL), "/")
	if s.BaseURL == "" {
		s.BaseURL = defaultStabilityBaseURL
	}
	s.OutputFormat = strings.ToLower(strings.TrimSpace(s.OutputFormat))
	if s.OutputFormat == "" {
		s.OutputFormat = defaultStabilityOutputFormat
	}
	if s.TimeoutSeconds <= 0 {
		s.TimeoutSeconds = defaultStabilityTimeoutSeconds
	}
}

func (c *Config) normalizeKling() {
	k := &c.Providers.Kling
	k.AccessKey = envFallback(k.AccessKey, "KLING_ACCESS_KEY")
	k.SecretKey = envFallback(k.SecretKey, "KLING_SECRET_KEY")
	k.BaseURL = strings.TrimRight(strings.TrimSpace(k.BaseURL), "/")
	if k.BaseURL == "" {
		k.BaseURL = defaultKlingBaseURL
	}
	k.Model = strings.TrimSpace(k.Model)
	if k.Model == "" {
		k.Model = defaultKlingModel
	}
	if k.DurationSeconds <= 0 {
		k.DurationSeconds = defaultKlingDurationSeconds
	}
	k.AspectRatio = strings.TrimSpace(k.AspectRatio)
	if k.AspectRatio == "" {
		k.AspectRatio = defaultKlingAspectRatio
	}
	if k.PollIntervalSeconds <= 0 {
		k.PollIntervalSeconds = defaultKlingPollInterval
	}
	if k.PollAttempts <= 0 {
		k.PollAttempts = defaultKlingPollAttempts
	}
	if k.DailyCap <= 0 {
		k.DailyCap = defaultKlingDailyCap
	}
	if k.CostPerVideo <= 0 {
		k.CostPerVideo = defaultKlingCostPerVideo
	}
}

func (c *Config) normalizePollinations() {
	p := &c.Providers.Pollinations
	p.ImageBaseURL = strings.TrimRight(strings.TrimSpace(p.ImageBaseURL), "/")
	if p.ImageBaseURL == "" {
		p.ImageBaseURL = defaultPollinationsImageBaseURL
	}
	if p.VideoWidth <= 0 {
		p.VideoWidth = defaultPollinationsVideoWidth
	}
	if p.VideoHeight <= 0 {
		p.VideoHeight = defaultPollinationsVideoHeight
	}
}

func (c *Config) normalizeTavily() {
	t := &c.Providers.Tavily
	t.APIKey = envFallback(t.APIKey, "TAVILY_API_KEY")
	t.BaseURL = strings.TrimSpace(t.BaseURL)
	if t.BaseURL == "" {
		t.BaseURL = defaultTavilyBaseURL
	}
	if t.MaxResults <= 0 || t.MaxResults > 10 {
		t.MaxResults = defaultTavilyMaxResults
	}
	if t.TimeoutSeconds <= 0 {
		t.TimeoutSeconds = defaultTavilyTimeoutSeconds
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
