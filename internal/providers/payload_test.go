package providers

import "testing"

func TestVideoPayloadRoundTrip(t *testing.T) {
	urls := []string{
		"https://cdn.example.com/v/abc123.mp4",
		"https://example.com/clip.mp4?sig=a%2Bb&exp=99",
		"data:video/mp4;base64,AAAA",
	}
	for _, url := range urls {
		encoded := EncodeVideo(url)
		if got := StripMedia(encoded); got != url {
			t.Fatalf("round trip lost bytes: %q -> %q", url, got)
		}
	}
}

func TestImagePayloadRoundTrip(t *testing.T) {
	url := "https://image.pollinations.ai/prompt/a%20red%20fox?width=1024"
	if got := StripMedia(EncodeImage(url)); got != url {
		t.Fatalf("round trip lost bytes: %q", got)
	}
}

func TestStripMediaLeavesPlainTextAlone(t *testing.T) {
	if got := StripMedia("just an answer"); got != "just an answer" {
		t.Fatalf("plain text mangled: %q", got)
	}
}

func TestIsMedia(t *testing.T) {
	if !IsMedia(EncodeImage("x")) || !IsMedia(EncodeVideo("y")) {
		t.Fatal("media payloads not detected")
	}
	if IsMedia("IMAGE_DATA is mentioned mid-sentence") {
		t.Fatal("false positive on non-prefix mention")
	}
}

func TestIsBillingMessage(t *testing.T) {
	billing := []string{
		"http 402: payment required",
		"Too Many Requests (429)",
		"Insufficient balance for request",
		"account credit exhausted",
		"daily quota reached",
	}
	for _, msg := range billing {
		if !IsBillingMessage(msg) {
			t.Fatalf("expected billing match for %q", msg)
		}
	}
	if IsBillingMessage("connection reset by peer") {
		t.Fatal("unexpected billing match")
	}
}

func TestParseQuality(t *testing.T) {
	if ParseQuality("HD") != QualityHD || ParseQuality("") != QualityStandard {
		t.Fatal("quality parsing wrong")
	}
	w, h := QualityHD.Dimensions()
	if w != 1280 || h != 1280 {
		t.Fatalf("unexpected hd dimensions %dx%d", w, h)
	}
}
