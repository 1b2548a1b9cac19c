package config

const (
	defaultBind                  = "127.0.0.1:8321"
	defaultRequestTimeoutSeconds = 300
	defaultDataDir               = "~/.local/share/prism"
	defaultLogDir                = "~/.local/share/prism/logs"
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"

	defaultOpenRouterBaseURL          = "https://openrouter.ai/api/v1"
	defaultOpenRouterReferer          = "https://github.com/prism-search/prism"
	defaultOpenRouterTitle            = "Prism Search"
	defaultOpenRouterTimeoutSeconds   = 60
	defaultOpenRouterReasoningTimeout = 180
	defaultOpenRouterMaxTokens        = 4096

	defaultCerebrasBaseURL        = "https://api.cerebras.ai/v1"
	defaultCerebrasModel          = "llama-3.3-70b"
	defaultCerebrasTimeoutSeconds = 60

	defaultHuggingFaceBaseURL        = "https://api-inference.huggingface.co/models"
	defaultHuggingFaceImageModel     = "black-forest-labs/FLUX.1-schnell"
	defaultHuggingFaceVideoModel     = "ali-vilab/text-to-video-ms-1.7b"
	defaultHuggingFaceTimeoutSeconds = 120
	defaultHuggingFaceLoadingRetries = 5

	defaultStabilityBaseURL        = "https://api.stability.ai/v2beta/stable-image/generate/core"
	defaultStabilityOutputFormat   = "png"
	defaultStabilityTimeoutSeconds = 120

	defaultKlingBaseURL         = "https://api.klingai.com"
	defaultKlingModel           = "kling-v1"
	defaultKlingDurationSeconds = 5
	defaultKlingAspectRatio     = "16:9"
	defaultKlingPollInterval    = 15
	defaultKlingPollAttempts    = 10
	// The daily cap and per-call cost are intentionally separate knobs: the
	// cap is what /credits reports as the day's budget, the cost is what one
	// completed generation deducts from it.
	defaultKlingDailyCap     = 100
	defaultKlingCostPerVideo = 20

	defaultPollinationsImageBaseURL = "https://image.pollinations.ai/prompt"
	defaultPollinationsVideoWidth   = 1280
	defaultPollinationsVideoHeight  = 720

	defaultTavilyBaseURL        = "https://api.tavily.com"
	defaultTavilyMaxResults     = 5
	defaultTavilyTimeoutSeconds = 30
)

func defaultModels() map[string]string {
	return map[string]string{
		"chat":    "google/gemini-2.0-flash-001",
		"flash":   "google/gemini-2.0-flash-001",
		"think":   "deepseek/deepseek-r1",
		"code":    "qwen/qwen-2.5-coder-32b-instruct",
		"pro":     "anthropic/claude-sonnet-4",
		"analyze": "anthropic/claude-sonnet-4",
	}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Server: Server{
			Bind:                  defaultBind,
			RequestTimeoutSeconds: defaultRequestTimeoutSeconds,
		},
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Providers: Providers{
			OpenRouter: OpenRouter{
				BaseURL:                 defaultOpenRouterBaseURL,
				Referer:                 defaultOpenRouterReferer,
				Title:                   defaultOpenRouterTitle,
				Models:                  defaultModels(),
				TimeoutSeconds:          defaultOpenRouterTimeoutSeconds,
				ReasoningTimeoutSeconds: defaultOpenRouterReasoningTimeout,
				MaxTokens:               defaultOpenRouterMaxTokens,
			},
			Cerebras: Cerebras{
				BaseURL:        defaultCerebrasBaseURL,
				Model:          defaultCerebrasModel,
				TimeoutSeconds: defaultCerebrasTimeoutSeconds,
			},
			HuggingFace: HuggingFace{
				BaseURL:        defaultHuggingFaceBaseURL,
				ImageModel:     defaultHuggingFaceImageModel,
				VideoModel:     defaultHuggingFaceVideoModel,
				TimeoutSeconds: defaultHuggingFaceTimeoutSeconds,
				LoadingRetries: defaultHuggingFaceLoadingRetries,
			},
			Stability: Stability{
				BaseURL:        defaultStabilityBaseURL,
				OutputFormat:   defaultStabilityOutputFormat,
				TimeoutSeconds: defaultStabilityTimeoutSeconds,
			},
			Kling: Kling{
				BaseURL:             defaultKlingBaseURL,
				Model:               defaultKlingModel,
				DurationSeconds:     defaultKlingDurationSeconds,
				AspectRatio:         defaultKlingAspectRatio,
				PollIntervalSeconds: defaultKlingPollInterval,
				PollAttempts:        defaultKlingPollAttempts,
				DailyCap:            defaultKlingDailyCap,
				CostPerVideo:        defaultKlingCostPerVideo,
			},
			Pollinations: Pollinations{
				ImageBaseURL: defaultPollinationsImageBaseURL,
				VideoWidth:   defaultPollinationsVideoWidth,
				VideoHeight:  defaultPollinationsVideoHeight,
			},
			Tavily: Tavily{
				BaseURL:        defaultTavilyBaseURL,
				MaxResults:     defaultTavilyMaxResults,
				TimeoutSeconds: defaultTavilyTimeoutSeconds,
			},
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
