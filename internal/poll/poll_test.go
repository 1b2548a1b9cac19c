package poll

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestUntilReturnsOnTerminalState(t *testing.T) {
	calls := 0
	result, err := Until(context.Background(), time.Millisecond, 10, func(ctx context.Context) (string, bool, error) {
		calls++
		if calls == 3 {
			return "https://example.com/video.mp4", true, nil
		}
		return "", false, nil
	})
	if err != nil {
		t.Fatalf("Until returned error: %v", err)
	}
	if result != "https://example.com/video.mp4" {
		t.Fatalf("unexpected result %q", result)
	}
	if calls != 3 {
		t.Fatalf("expected 3 checks, got %d", calls)
	}
}

func TestUntilExhaustsAttempts(t *testing.T) {
	calls := 0
	_, err := Until(context.Background(), time.Millisecond, 4, func(ctx context.Context) (int, bool, error) {
		calls++
		return 0, false, nil
	})
	if !errors.Is(err, ErrAttemptsExhausted) {
		t.Fatalf("expected ErrAttemptsExhausted, got %v", err)
	}
	if calls != 4 {
		t.Fatalf("expected 4 checks, got %d", calls)
	}
}

func TestUntilPropagatesCheckError(t *testing.T) {
	boom := errors.New("task failed")
	_, err := Until(context.Background(), time.Millisecond, 10, func(ctx context.Context) (int, bool, error) {
		return 0, false, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected check error, got %v", err)
	}
}

func TestUntilHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Until(ctx, time.Hour, 10, func(ctx context.Context) (int, bool, error) {
		t.Fatal("check should never run")
		return 0, false, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestUntilRejectsBadParameters(t *testing.T) {
	if _, err := Until(context.Background(), time.Second, 0, func(ctx context.Context) (int, bool, error) {
		return 0, true, nil
	}); err == nil {
		t.Fatal("expected error for zero attempts")
	}
	if _, err := Until(context.Background(), 0, 1, func(ctx context.Context) (int, bool, error) {
		return 0, true, nil
	}); err == nil {
		t.Fatal("expected error for zero interval")
	}
}
