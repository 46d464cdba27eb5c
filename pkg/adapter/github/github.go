// Package github polls the GitHub REST API rate limit for one account.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/quotawatch/quotawatch/pkg/adapter"
)

// PlatformType is the factory key for GitHub accounts.
const PlatformType = "github"

// Adapter reads the authenticated core rate limit from /rate_limit. That
// endpoint does not itself count against the quota.
type Adapter struct {
	adapter.Base
	client *http.Client
}

// New builds a GitHub adapter. Config keys: "token" (required credential),
// "api_url" (optional, for GitHub Enterprise).
func New(record adapter.AccountRecord) (adapter.Adapter, error) {
	return &Adapter{
		Base:   adapter.NewBase(record),
		client: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// ConfigSchema describes the fields the configuration UI should collect.
func ConfigSchema() []adapter.ConfigField {
	return []adapter.ConfigField{
		{Name: "token", Type: "string", Secret: true, Required: true},
		{Name: "api_url", Type: "string"},
	}
}

func (a *Adapter) IsConfigured() bool {
	return a.ConfigString("token") != ""
}

func (a *Adapter) FetchUsage(ctx context.Context) adapter.FetchResult {
	if !a.IsConfigured() {
		return adapter.FetchResult{Configured: false}
	}

	baseURL := "https://api.github.com"
	if u := a.ConfigString("api_url"); u != "" {
		baseURL = u
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/rate_limit", nil)
	if err != nil {
		return fetchError(err.Error())
	}
	req.Header.Set("Authorization", "token "+a.ConfigString("token"))
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := a.client.Do(req)
	if err != nil {
		return fetchError(err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fetchError(fmt.Sprintf("HTTP %d from %s", resp.StatusCode, baseURL))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fetchError(err.Error())
	}

	var rateLimitResp struct {
		Resources map[string]struct {
			Limit     float64 `json:"limit"`
			Remaining float64 `json:"remaining"`
		} `json:"resources"`
	}
	if err := json.Unmarshal(body, &rateLimitResp); err != nil {
		return fetchError("parsing rate limit response: " + err.Error())
	}

	core, ok := rateLimitResp.Resources["core"]
	if !ok {
		return fetchError("rate limit response has no core resource")
	}

	snap := adapter.NewUsageSnapshot(core.Remaining, core.Limit, "requests", time.Now())
	return adapter.FetchResult{Configured: true, Usage: &snap}
}

func fetchError(msg string) adapter.FetchResult {
	return adapter.FetchResult{Configured: true, Error: msg}
}
