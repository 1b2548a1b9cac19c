// Package credits aggregates upstream account balances and the local advisory
// video quota into the report served by the credits endpoint.
package credits

import (
	"context"
	"log/slog"

	"prism/internal/logging"
	"prism/internal/providers/openrouter"
)

// BalanceFetcher supplies the OpenRouter account snapshot.
type BalanceFetcher interface {
	Credits(ctx context.Context) (openrouter.Credits, error)
}

// UsageReader supplies today's advisory video usage.
type UsageReader interface {
	UsageToday(ctx context.Context) (int, error)
}

// KlingQuota is the advisory daily video allowance, reconstructed from the
// local counter rather than any upstream API.
type KlingQuota struct {
	Total     int `json:"total"`
	Used      int `json:"used"`
	Remaining int `json:"remaining"`
}

// Report is the combined balance snapshot.
type Report struct {
	OpenRouter openrouter.Credits `json:"openrouter"`
	Kling      KlingQuota         `json:"kling"`
}

// Service builds balance reports.
type Service struct {
	balances BalanceFetcher
	usage    UsageReader
	dailyCap int
	logger   *slog.Logger
}

// NewService wires the report builder. balances may be nil when OpenRouter is
// unconfigured.
func NewService(balances BalanceFetcher, usage UsageReader, dailyCap int, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{
		balances: balances,
		usage:    usage,
		dailyCap: dailyCap,
		logger:   logging.NewComponentLogger(logger, "credits"),
	}
}

// Report assembles the snapshot. An unreachable OpenRouter account reads as
// zeroed figures rather than an error, so the endpoint stays usable when the
// upstream is down.
func (s *Service) Report(ctx context.Context) (Report, error) {
	var report Report

	if s.balances != nil {
		balance, err := s.balances.Credits(ctx)
		if err != nil {
			s.logger.Warn("openrouter balance unavailable", logging.Error(err))
		} else {
			report.OpenRouter = balance
		}
	}

	used := 0
	if s.usage != nil {
		var err error
		used, err = s.usage.UsageToday(ctx)
		if err != nil {
			return Report{}, err
		}
	}
	remaining := s.dailyCap - used
	if remaining < 0 {
		remaining = 0
	}
	report.Kling = KlingQuota{Total: s.dailyCap, Used: used, Remaining: remaining}
	return report, nil
}
