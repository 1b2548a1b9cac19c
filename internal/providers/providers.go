package providers

import (
	"context"
	"strings"
)

// ChatMessage is one role-tagged turn of the conversation sent upstream.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Result is the normalized outcome every chain produces.
type Result struct {
	Detailed string `json:"detailed_answer"`
	Direct   string `json:"direct_answer"`
}

// Quality selects generation fidelity for media providers.
type Quality string

const (
	QualityStandard Quality = "standard"
	QualityHD       Quality = "hd"
)

// ParseQuality normalizes a caller-supplied quality string.
func ParseQuality(value string) Quality {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "hd", "high":
		return QualityHD
	default:
		return QualityStandard
	}
}

// Dimensions returns the pixel size requested from image providers.
func (q Quality) Dimensions() (width, height int) {
	if q == QualityHD {
		return 1280, 1280
	}
	return 1024, 1024
}

// TextCompleter is implemented by chat-completion providers.
type TextCompleter interface {
	Name() string
	Complete(ctx context.Context, model string, messages []ChatMessage) (string, error)
}

// ImageGenerator is implemented by image providers. The returned string is a
// full IMAGE_DATA payload.
type ImageGenerator interface {
	Name() string
	GenerateImage(ctx context.Context, prompt string, quality Quality) (string, error)
}

// VideoGenerator is implemented by video providers. The returned string is a
// full VIDEO_DATA payload.
type VideoGenerator interface {
	Name() string
	GenerateVideo(ctx context.Context, prompt string) (string, error)
}

// Searcher is implemented by web-search augmentation providers.
type Searcher interface {
	Name() string
	Search(ctx context.Context, query string) (string, error)
}
