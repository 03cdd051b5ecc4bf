package collab

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/smallken/ff-pf-frondend-sub002/cmd/server/internal/quota"
)

// OverviewClient talks to the overview/query collaborator. The endpoint takes
// no cycle parameter; the server always answers for the current cycle.
type OverviewClient struct {
	opts       Options
	httpClient *http.Client
}

// NewOverviewClient creates a new OverviewClient with the given options.
func NewOverviewClient(opts Options) *OverviewClient {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	return &OverviewClient{
		opts: opts,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
	}
}

// FetchUsage retrieves the current-cycle usage snapshot via
// GET /api/v1/overview.
func (c *OverviewClient) FetchUsage(ctx context.Context) (quota.UsageSnapshot, error) {
	url := fmt.Sprintf("%s/api/v1/overview", c.opts.BaseURL)
	httpReq, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return quota.UsageSnapshot{}, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return quota.UsageSnapshot{}, fmt.Errorf("failed to call overview service (network error): %w", err)
	}
	defer httpResp.Body.Close()

	bodyBytes, _ := io.ReadAll(httpResp.Body)

	if httpResp.StatusCode != http.StatusOK {
		var envelope errorEnvelope
		_ = json.Unmarshal(bodyBytes, &envelope)
		return quota.UsageSnapshot{}, &RemoteError{StatusCode: httpResp.StatusCode, Message: envelope.message()}
	}

	var snap quota.UsageSnapshot
	if err := json.Unmarshal(bodyBytes, &snap); err != nil {
		return quota.UsageSnapshot{}, fmt.Errorf("failed to parse overview response: %w", err)
	}

	snap.FetchedAt = time.Now()
	return snap, nil
}
