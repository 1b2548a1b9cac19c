package mode

import "strings"

// Mode selects which provider chain handles a query.
type Mode string

const (
	Chat      Mode = "chat"
	Flash     Mode = "flash"
	Think     Mode = "think"
	Code      Mode = "code"
	Pro       Mode = "pro"
	Analyze   Mode = "analyze"
	Image     Mode = "image"
	Visualize Mode = "visualize"
	Video     Mode = "video"
)

// Parse normalizes a caller-supplied mode string. Unknown values fall back to
// Chat so unrecognized modes route to the default text provider.
func Parse(value string) Mode {
	switch Mode(strings.ToLower(strings.TrimSpace(value))) {
	case Flash:
		return Flash
	case Think:
		return Think
	case Code:
		return Code
	case Pro:
		return Pro
	case Analyze:
		return Analyze
	case Image:
		return Image
	case Visualize:
		return Visualize
	case Video:
		return Video
	default:
		return Chat
	}
}

// IsText reports whether m is handled by the text-completion chain.
func (m Mode) IsText() bool {
	switch m {
	case Chat, Flash, Think, Code, Pro, Analyze:
		return true
	default:
		return false
	}
}

// IsImage reports whether m is handled by the image chain.
func (m Mode) IsImage() bool {
	return m == Image || m == Visualize
}

// NeedsWebSearch reports whether m splices web-search context into the prompt.
func (m Mode) NeedsWebSearch() bool {
	return m == Pro || m == Analyze
}

// IsReasoning reports whether m routes to a reasoning-class upstream model,
// which gets the longer completion timeout.
func (m Mode) IsReasoning() bool {
	switch m {
	case Think, Pro, Analyze:
		return true
	default:
		return false
	}
}

var prefixIntents = []struct {
	prefixes []string
	mode     Mode
}{
	// Image intent is checked before video and the text intents.
	{[]string{"/image", "/img", "/visualize", "/draw"}, Image},
	{[]string{"/video", "/vid", "/animate"}, Video},
	{[]string{"/code"}, Code},
	{[]string{"/think"}, Think},
}

var phraseIntents = []struct {
	phrases []string
	mode    Mode
}{
	{[]string{
		"generate an image", "generate image", "create an image",
		"draw a picture", "draw me", "make an image", "picture of",
	}, Image},
	{[]string{
		"generate a video", "generate video", "create a video",
		"make a video", "animate this",
	}, Video},
	{[]string{
		"write a function", "write code", "write a program",
		"implement a function", "fix this code",
	}, Code},
}

// Detect inspects the query text for explicit command prefixes or free-text
// phrases and returns the implied mode. The boolean is false when nothing
// matches; the caller's mode must then be preserved unchanged.
func Detect(query string) (Mode, bool) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return "", false
	}
	lower := strings.ToLower(trimmed)

	first := lower
	if idx := strings.IndexAny(lower, " \t"); idx >= 0 {
		first = lower[:idx]
	}
	for _, intent := range prefixIntents {
		for _, prefix := range intent.prefixes {
			if first == prefix {
				return intent.mode, true
			}
		}
	}

	for _, intent := range phraseIntents {
		for _, phrase := range intent.phrases {
			if strings.Contains(lower, phrase) {
				return intent.mode, true
			}
		}
	}
	return "", false
}

// StripCommand removes a leading intent command token ("/image", "/code", …)
// so the prompt sent upstream is just the user's request.
func StripCommand(query string) string {
	trimmed := strings.TrimSpace(query)
	if !strings.HasPrefix(trimmed, "/") {
		return trimmed
	}
	idx := strings.IndexAny(trimmed, " \t")
	if idx < 0 {
		return ""
	}
	token := strings.ToLower(trimmed[:idx])
	for _, intent := range prefixIntents {
		for _, prefix := range intent.prefixes {
			if token == prefix {
				return strings.TrimSpace(trimmed[idx:])
			}
		}
	}
	return trimmed
}
