// Package pollinations implements the free, credential-less media fallback.
// Generation is pure URL construction, so it sits last in both media chains
// and cannot fail.
package pollinations

import (
	"context"
	"hash/fnv"
	"net/url"
	"strconv"
	"strings"

	"prism/internal/providers"
)

// Config captures the endpoint and video render settings.
type Config struct {
	ImageBaseURL string
	VideoWidth   int
	VideoHeight  int
}

// Client builds Pollinations render URLs.
type Client struct {
	cfg Config
}

// NewClient constructs a Pollinations client using the supplied configuration.
func NewClient(cfg Config) *Client {
	client := &Client{cfg: Config{
		ImageBaseURL: strings.TrimRight(strings.TrimSpace(cfg.ImageBaseURL), "/"),
		VideoWidth:   cfg.VideoWidth,
		VideoHeight:  cfg.VideoHeight,
	}}
	if client.cfg.ImageBaseURL == "" {
		client.cfg.ImageBaseURL = "https://image.pollinations.ai/prompt"
	}
	if client.cfg.VideoWidth <= 0 {
		client.cfg.VideoWidth = 1280
	}
	if client.cfg.VideoHeight <= 0 {
		client.cfg.VideoHeight = 720
	}
	return client
}

// Name identifies the provider in chain logs.
func (c *Client) Name() string { return "pollinations" }

// GenerateImage returns an IMAGE_DATA payload with a render URL for the
// prompt. The seed is derived from the prompt so repeated queries resolve to
// the same image.
func (c *Client) GenerateImage(_ context.Context, prompt string, quality providers.Quality) (string, error) {
	width, height := quality.Dimensions()
	return providers.EncodeImage(c.renderURL(prompt, width, height)), nil
}

// videoStyles maps a style keyword mentioned in the prompt to the rewrite
// suffix used for rendering. The scan stops at the first match.
var videoStyles = []struct {
	keyword string
	suffix  string
}{
	{"anime", ", anime style, cel shaded, dynamic motion lines"},
	{"cartoon", ", cartoon style, bold outlines, exaggerated motion"},
	{"pixel", ", pixel art style, retro sprite animation frames"},
	{"watercolor", ", watercolor wash, soft edges, flowing pigment"},
	{"realistic", ", photorealistic, natural lighting, cinematic motion blur"},
	{"cinematic", ", cinematic lighting, anamorphic framing, film grain"},
}

const defaultVideoStyle = ", cinematic motion blur, dynamic action shot, film still"

// GenerateVideo approximates video with a motion-styled render. When the
// prompt mentions a known style keyword it is rewritten with that style's
// suffix, otherwise a generic motion suffix is used; the result is still a
// single rendered frame served by the image endpoint at the configured video
// dimensions.
func (c *Client) GenerateVideo(_ context.Context, prompt string) (string, error) {
	return providers.EncodeVideo(c.renderURL(styledPrompt(prompt), c.cfg.VideoWidth, c.cfg.VideoHeight)), nil
}

func styledPrompt(prompt string) string {
	lower := strings.ToLower(prompt)
	for _, style := range videoStyles {
		if strings.Contains(lower, style.keyword) {
			return prompt + style.suffix
		}
	}
	return prompt + defaultVideoStyle
}

func (c *Client) renderURL(prompt string, width, height int) string {
	query := url.Values{}
	query.Set("width", strconv.Itoa(width))
	query.Set("height", strconv.Itoa(height))
	query.Set("seed", strconv.FormatUint(uint64(promptSeed(prompt)), 10))
	query.Set("nologo", "true")
	return c.cfg.ImageBaseURL + "/" + url.PathEscape(prompt) + "?" + query.Encode()
}

func promptSeed(prompt string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(prompt))
	return h.Sum32()
}
