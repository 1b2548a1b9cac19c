package providers

import "strings"

// The IMAGE_DATA / VIDEO_DATA prefixes are the wire contract between the
// orchestrator and the presentation layer. They must be preserved exactly.
const (
	ImagePrefix = "IMAGE_DATA:"
	VideoPrefix = "VIDEO_DATA:"
)

// EncodeImage tags a URL or data URI as an image payload.
func EncodeImage(ref string) string {
	return ImagePrefix + ref
}

// EncodeVideo tags a URL or data URI as a video payload.
func EncodeVideo(ref string) string {
	return VideoPrefix + ref
}

// IsMedia reports whether a detailed answer carries a media payload.
func IsMedia(payload string) bool {
	return strings.HasPrefix(payload, ImagePrefix) || strings.HasPrefix(payload, VideoPrefix)
}

// StripMedia removes the media prefix, returning the original reference
// byte-for-byte. Non-media payloads are returned unchanged.
func StripMedia(payload string) string {
	if rest, ok := strings.CutPrefix(payload, ImagePrefix); ok {
		return rest
	}
	if rest, ok := strings.CutPrefix(payload, VideoPrefix); ok {
		return rest
	}
	return payload
}
