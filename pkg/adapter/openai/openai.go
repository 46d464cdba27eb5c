// Package openai polls OpenAI rate-limit headers for one account.
package openai

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/quotawatch/quotawatch/pkg/adapter"
)

// PlatformType is the factory key for OpenAI accounts.
const PlatformType = "openai"

// Adapter probes a cheap endpoint (List Models) and reads the
// x-ratelimit-*-requests headers from the response. The probe consumes one
// request of quota itself.
type Adapter struct {
	adapter.Base
	client *http.Client
}

// New builds an OpenAI adapter. Config keys: "api_key" (required credential),
// "org_id" and "base_url" (optional).
func New(record adapter.AccountRecord) (adapter.Adapter, error) {
	return &Adapter{
		Base:   adapter.NewBase(record),
		client: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// ConfigSchema describes the fields the configuration UI should collect.
func ConfigSchema() []adapter.ConfigField {
	return []adapter.ConfigField{
		{Name: "api_key", Type: "string", Secret: true, Required: true},
		{Name: "org_id", Type: "string"},
		{Name: "base_url", Type: "string"},
	}
}

func (a *Adapter) IsConfigured() bool {
	return a.ConfigString("api_key") != ""
}

func (a *Adapter) FetchUsage(ctx context.Context) adapter.FetchResult {
	if !a.IsConfigured() {
		return adapter.FetchResult{Configured: false}
	}

	baseURL := "https://api.openai.com/v1"
	if u := a.ConfigString("base_url"); u != "" {
		baseURL = u
	}
	url := strings.TrimRight(baseURL, "/") + "/models"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fetchError(err.Error())
	}
	req.Header.Set("Authorization", "Bearer "+a.ConfigString("api_key"))
	if org := a.ConfigString("org_id"); org != "" {
		req.Header.Set("OpenAI-Organization", org)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return fetchError(err.Error())
	}
	defer resp.Body.Close()

	// A 429 still carries the headers we want; anything else non-OK is a
	// failed poll.
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusTooManyRequests {
		return fetchError(fmt.Sprintf("HTTP %d from %s", resp.StatusCode, url))
	}

	limitStr := resp.Header.Get("x-ratelimit-limit-requests")
	remStr := resp.Header.Get("x-ratelimit-remaining-requests")
	if limitStr == "" || remStr == "" {
		return fetchError("rate limit headers not present in response")
	}

	limit, err := strconv.ParseFloat(limitStr, 64)
	if err != nil {
		return fetchError("parsing x-ratelimit-limit-requests: " + err.Error())
	}
	remaining, err := strconv.ParseFloat(remStr, 64)
	if err != nil {
		return fetchError("parsing x-ratelimit-remaining-requests: " + err.Error())
	}

	snap := adapter.NewUsageSnapshot(remaining, limit, "requests", time.Now())
	return adapter.FetchResult{Configured: true, Usage: &snap}
}

func fetchError(msg string) adapter.FetchResult {
	return adapter.FetchResult{Configured: true, Error: msg}
}
