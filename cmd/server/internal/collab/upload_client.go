package collab

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// UploadClient talks to the file-storage collaborator. Each call uploads one
// file and returns its stable reference URL.
type UploadClient struct {
	opts       Options
	httpClient *http.Client
}

// NewUploadClient creates a new UploadClient with the given options.
func NewUploadClient(opts Options) *UploadClient {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	return &UploadClient{
		opts: opts,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
	}
}

// uploadResponse is the success payload of the upload collaborator.
type uploadResponse struct {
	URL string `json:"url"`
}

// UploadFile uploads a single file tagged with its task category via
// multipart POST /api/v1/files. A non-2xx response or a missing url field is
// reported as failure; the server's message field is surfaced when present.
func (c *UploadClient) UploadFile(ctx context.Context, category, filename string, content io.Reader) (string, error) {
	// 1. Build the multipart body
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if err := writer.WriteField("category", category); err != nil {
		return "", fmt.Errorf("failed to write category field: %w", err)
	}
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return "", fmt.Errorf("failed to copy file content: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	// 2. Build HTTP request
	url := fmt.Sprintf("%s/api/v1/files", c.opts.BaseURL)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, &body)
	if err != nil {
		return "", fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	// 3. Send request
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to call upload service (network error): %w", err)
	}
	defer httpResp.Body.Close()

	bodyBytes, _ := io.ReadAll(httpResp.Body)

	// 4. Check HTTP status code
	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		var envelope errorEnvelope
		_ = json.Unmarshal(bodyBytes, &envelope)
		return "", &RemoteError{StatusCode: httpResp.StatusCode, Message: envelope.message()}
	}

	// 5. Parse response
	var resp uploadResponse
	if err := json.Unmarshal(bodyBytes, &resp); err != nil {
		return "", fmt.Errorf("failed to parse upload response: %w", err)
	}
	if resp.URL == "" {
		return "", &RemoteError{StatusCode: httpResp.StatusCode, Message: "upload service returned no url"}
	}

	return resp.URL, nil
}
