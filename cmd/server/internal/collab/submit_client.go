package collab

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/smallken/ff-pf-frondend-sub002/cmd/server/internal/quota"
)

// SubmitClient talks to the registration collaborator, which owns submission
// persistence, duplicate detection and moderation.
type SubmitClient struct {
	opts       Options
	httpClient *http.Client
}

// NewSubmitClient creates a new SubmitClient with the given options.
func NewSubmitClient(opts Options) *SubmitClient {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	return &SubmitClient{
		opts: opts,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
	}
}

// registerResponse is the success payload of the registration collaborator.
type registerResponse struct {
	SubmissionID string `json:"submissionId"`
}

// Register registers one submission via POST /api/v1/submissions and returns
// the opaque submission id. Rejections (validation, duplicates) come back as
// a RemoteError whose message is surfaced verbatim.
func (c *SubmitClient) Register(ctx context.Context, req RegisterRequest) (string, error) {
	var resp registerResponse
	url := fmt.Sprintf("%s/api/v1/submissions", c.opts.BaseURL)
	if err := c.postJSON(ctx, url, req, &resp); err != nil {
		return "", err
	}
	if resp.SubmissionID == "" {
		return "", &RemoteError{Message: "registration service returned no submission id"}
	}
	return resp.SubmissionID, nil
}

// UpdateOriginal patches a registered original-work submission via
// PUT /api/v1/submissions/original/{recordId} and returns the superseding
// record.
func (c *SubmitClient) UpdateOriginal(ctx context.Context, recordID string, req UpdateOriginalRequest) (quota.OriginalRecord, error) {
	reqBody, err := json.Marshal(req)
	if err != nil {
		return quota.OriginalRecord{}, fmt.Errorf("failed to serialize update request: %w", err)
	}

	url := fmt.Sprintf("%s/api/v1/submissions/original/%s", c.opts.BaseURL, recordID)
	httpReq, err := http.NewRequestWithContext(ctx, "PUT", url, bytes.NewReader(reqBody))
	if err != nil {
		return quota.OriginalRecord{}, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return quota.OriginalRecord{}, fmt.Errorf("failed to call registration service (network error): %w", err)
	}
	defer httpResp.Body.Close()

	bodyBytes, _ := io.ReadAll(httpResp.Body)

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		var envelope errorEnvelope
		_ = json.Unmarshal(bodyBytes, &envelope)
		return quota.OriginalRecord{}, &RemoteError{StatusCode: httpResp.StatusCode, Message: envelope.message()}
	}

	var record quota.OriginalRecord
	if err := json.Unmarshal(bodyBytes, &record); err != nil {
		return quota.OriginalRecord{}, fmt.Errorf("failed to parse update response: %w", err)
	}
	return record, nil
}

// postJSON sends a JSON POST and decodes the success payload into out.
func (c *SubmitClient) postJSON(ctx context.Context, url string, payload, out interface{}) error {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to serialize request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(reqBody))
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to call registration service (network error): %w", err)
	}
	defer httpResp.Body.Close()

	bodyBytes, _ := io.ReadAll(httpResp.Body)

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		var envelope errorEnvelope
		_ = json.Unmarshal(bodyBytes, &envelope)
		return &RemoteError{StatusCode: httpResp.StatusCode, Message: envelope.message()}
	}

	if err := json.Unmarshal(bodyBytes, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
