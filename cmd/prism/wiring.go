package main

import (
	"log/slog"
	"time"

	"prism/internal/config"
	"prism/internal/credits"
	"prism/internal/mode"
	"prism/internal/providers"
	"prism/internal/providers/cerebras"
	"prism/internal/providers/huggingface"
	"prism/internal/providers/kling"
	"prism/internal/providers/openrouter"
	"prism/internal/providers/pollinations"
	"prism/internal/providers/stability"
	"prism/internal/providers/tavily"
	"prism/internal/search"
	"prism/internal/store"
)

// buildOrchestrator assembles the provider chains in their fixed fallback
// order. Unconfigured providers stay in the chain; they skip themselves at
// call time so the order never depends on which credentials are present.
func buildOrchestrator(cfg *config.Config, st *store.Store, logger *slog.Logger) (*search.Orchestrator, *openrouter.Client) {
	p := cfg.Providers

	// The HTTP client timeout is only a transport ceiling; the effective
	// per-mode deadline comes from the orchestrator's timeout resolver.
	orClient := openrouter.NewClient(openrouter.Config{
		APIKey:         p.OpenRouter.APIKey,
		BaseURL:        p.OpenRouter.BaseURL,
		Referer:        p.OpenRouter.Referer,
		Title:          p.OpenRouter.Title,
		MaxTokens:      p.OpenRouter.MaxTokens,
		TimeoutSeconds: max(p.OpenRouter.TimeoutSeconds, p.OpenRouter.ReasoningTimeoutSeconds),
	})
	cbClient := cerebras.NewClient(cerebras.Config{
		APIKey:         p.Cerebras.APIKey,
		BaseURL:        p.Cerebras.BaseURL,
		Model:          p.Cerebras.Model,
		TimeoutSeconds: p.Cerebras.TimeoutSeconds,
	})
	hfClient := huggingface.NewClient(huggingface.Config{
		APIKey:         p.HuggingFace.APIKey,
		BaseURL:        p.HuggingFace.BaseURL,
		ImageModel:     p.HuggingFace.ImageModel,
		VideoModel:     p.HuggingFace.VideoModel,
		TimeoutSeconds: p.HuggingFace.TimeoutSeconds,
		LoadingRetries: p.HuggingFace.LoadingRetries,
	})
	stClient := stability.NewClient(stability.Config{
		APIKey:         p.Stability.APIKey,
		BaseURL:        p.Stability.BaseURL,
		OutputFormat:   p.Stability.OutputFormat,
		TimeoutSeconds: p.Stability.TimeoutSeconds,
	})
	klClient := kling.NewClient(kling.Config{
		AccessKey:           p.Kling.AccessKey,
		SecretKey:           p.Kling.SecretKey,
		BaseURL:             p.Kling.BaseURL,
		Model:               p.Kling.Model,
		DurationSeconds:     p.Kling.DurationSeconds,
		AspectRatio:         p.Kling.AspectRatio,
		PollIntervalSeconds: p.Kling.PollIntervalSeconds,
		PollAttempts:        p.Kling.PollAttempts,
		CostPerVideo:        p.Kling.CostPerVideo,
	}, st)
	plClient := pollinations.NewClient(pollinations.Config{
		ImageBaseURL: p.Pollinations.ImageBaseURL,
		VideoWidth:   p.Pollinations.VideoWidth,
		VideoHeight:  p.Pollinations.VideoHeight,
	})
	tvClient := tavily.NewClient(tavily.Config{
		APIKey:         p.Tavily.APIKey,
		BaseURL:        p.Tavily.BaseURL,
		MaxResults:     p.Tavily.MaxResults,
		TimeoutSeconds: p.Tavily.TimeoutSeconds,
	})

	chains := search.Chains{
		Text:     []providers.TextCompleter{orClient, cbClient},
		Image:    []providers.ImageGenerator{hfClient, stClient, plClient},
		Video:    []providers.VideoGenerator{klClient, hfClient, plClient},
		Searcher: tvClient,
	}
	modelFor := func(m mode.Mode) string {
		return p.OpenRouter.ModelFor(string(m))
	}
	timeouts := search.WithTextTimeout(textTimeout(p.OpenRouter))
	return search.NewOrchestrator(chains, modelFor, logger, timeouts), orClient
}

// textTimeout maps fast modes to the general completion timeout and the
// reasoning modes (think, pro, analyze) to the longer reasoning one.
func textTimeout(o config.OpenRouter) search.TimeoutResolver {
	general := time.Duration(o.TimeoutSeconds) * time.Second
	reasoning := time.Duration(o.ReasoningTimeoutSeconds) * time.Second
	return func(m mode.Mode) time.Duration {
		if m.IsReasoning() {
			return reasoning
		}
		return general
	}
}

func buildCreditsService(cfg *config.Config, st *store.Store, orClient *openrouter.Client, logger *slog.Logger) *credits.Service {
	var balances credits.BalanceFetcher
	if orClient != nil && orClient.Configured() {
		balances = orClient
	}
	return credits.NewService(balances, st, cfg.Providers.Kling.DailyCap, logger)
}
