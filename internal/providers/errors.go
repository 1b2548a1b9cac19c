package providers

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnconfigured marks a provider constructed without credentials. The
	// orchestrator skips it and advances down the chain.
	ErrUnconfigured = errors.New("provider not configured")
	// ErrBilling marks a quota or payment failure that must surface to the
	// caller instead of silently degrading.
	ErrBilling = errors.New("billing error")
	// ErrUnavailable marks any other upstream failure; the orchestrator
	// advances to the next provider.
	ErrUnavailable = errors.New("provider unavailable")
)

// Wrap tags err with marker and a provider/operation detail string.
func Wrap(marker error, provider, operation string, err error) error {
	detail := provider
	if operation = strings.TrimSpace(operation); operation != "" {
		detail = detail + ": " + operation
	}
	if marker == nil {
		marker = ErrUnavailable
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

var billingKeywords = []string{
	"402", "429", "insufficient", "credit", "quota", "balance",
}

// IsBillingMessage reports whether an upstream failure text matches the
// billing/quota keyword set.
func IsBillingMessage(message string) bool {
	lower := strings.ToLower(message)
	for _, keyword := range billingKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}
