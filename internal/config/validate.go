package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable. Missing provider credentials
// are not errors: a provider without credentials is simply skipped by the
// orchestrator. Structural values still have to make sense.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateKling(); err != nil {
		return err
	}
	if err := c.validateHuggingFace(); err != nil {
		return err
	}
	if err := c.validateTavily(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateServer() error {
	if strings.TrimSpace(c.Server.Bind) == "" {
		return errors.New("server.bind must be set")
	}
	if c.Server.RequestTimeoutSeconds <= 0 {
		return errors.New("server.request_timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateKling() error {
	k := c.Providers.Kling
	// Both halves of the key pair are needed to sign the API token.
	if (k.AccessKey == "") != (k.SecretKey == "") {
		return errors.New("providers.kling.access_key and providers.kling.secret_key must be set together")
	}
	if err := ensurePositiveMap(map[string]int{
		"providers.kling.duration_seconds":      k.DurationSeconds,
		"providers.kling.poll_interval_seconds": k.PollIntervalSeconds,
		"providers.kling.poll_attempts":         k.PollAttempts,
		"providers.kling.daily_cap":             k.DailyCap,
		"providers.kling.cost_per_video":        k.CostPerVideo,
	}); err != nil {
		return err
	}
	if k.CostPerVideo > k.DailyCap {
		return errors.New("providers.kling.cost_per_video must not exceed providers.kling.daily_cap")
	}
	return nil
}

func (c *Config) validateHuggingFace() error {
	if c.Providers.HuggingFace.LoadingRetries <= 0 {
		return errors.New("providers.huggingface.loading_retries must be positive")
	}
	return nil
}

func (c *Config) validateTavily() error {
	if c.Providers.Tavily.MaxResults <= 0 {
		return errors.New("providers.tavily.max_results must be positive")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
