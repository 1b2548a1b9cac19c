package openrouter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"prism/internal/providers"
)

// Credits is the OpenRouter account balance snapshot.
type Credits struct {
	TotalCredits float64 `json:"total_credits"`
	TotalUsage   float64 `json:"total_usage"`
	Remaining    float64 `json:"remaining"`
}

type creditsResponse struct {
	Data struct {
		TotalCredits float64 `json:"total_credits"`
		TotalUsage   float64 `json:"total_usage"`
	} `json:"data"`
}

// Credits fetches the account balance from the credits endpoint.
func (c *Client) Credits(ctx context.Context) (Credits, error) {
	if !c.Configured() {
		return Credits{}, providers.Wrap(providers.ErrUnconfigured, c.Name(), "credits", nil)
	}
	endpoint, err := url.JoinPath(c.cfg.BaseURL, "credits")
	if err != nil {
		return Credits{}, fmt.Errorf("openrouter credits: build url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Credits{}, fmt.Errorf("openrouter credits: new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Credits{}, fmt.Errorf("openrouter credits: http error: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Credits{}, fmt.Errorf("openrouter credits: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Credits{}, fmt.Errorf("openrouter credits: http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var decoded creditsResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return Credits{}, fmt.Errorf("openrouter credits: decode response: %w", err)
	}
	return Credits{
		TotalCredits: decoded.Data.TotalCredits,
		TotalUsage:   decoded.Data.TotalUsage,
		Remaining:    decoded.Data.TotalCredits - decoded.Data.TotalUsage,
	}, nil
}
