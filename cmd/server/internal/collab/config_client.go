package collab

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/smallken/ff-pf-frondend-sub002/cmd/server/internal/catalog"
)

// ConfigClient talks to the optional remote configuration collaborator that
// publishes original-category overrides (topic, quota, enabled flag).
// Failures are returned to the caller, who falls back to catalog defaults;
// they are never surfaced to the member.
type ConfigClient struct {
	opts       Options
	httpClient *http.Client
}

// NewConfigClient creates a new ConfigClient with the given options.
func NewConfigClient(opts Options) *ConfigClient {
	if opts.Timeout == 0 {
		opts.Timeout = 10 * time.Second
	}
	return &ConfigClient{
		opts: opts,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
	}
}

// FetchOriginalConfig retrieves the original-category overrides via
// GET /api/v1/config/original. Implements catalog.RemoteConfigFetcher.
func (c *ConfigClient) FetchOriginalConfig(ctx context.Context) (catalog.OriginalOverride, error) {
	url := fmt.Sprintf("%s/api/v1/config/original", c.opts.BaseURL)
	httpReq, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return catalog.OriginalOverride{}, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return catalog.OriginalOverride{}, fmt.Errorf("failed to call config service (network error): %w", err)
	}
	defer httpResp.Body.Close()

	bodyBytes, _ := io.ReadAll(httpResp.Body)

	if httpResp.StatusCode != http.StatusOK {
		return catalog.OriginalOverride{}, &RemoteError{StatusCode: httpResp.StatusCode}
	}

	var override catalog.OriginalOverride
	if err := json.Unmarshal(bodyBytes, &override); err != nil {
		return catalog.OriginalOverride{}, fmt.Errorf("failed to parse config response: %w", err)
	}
	return override, nil
}
