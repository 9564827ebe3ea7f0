// Package remote implements the syncer.RemoteStore boundary over the
// wayfarer prompt service's HTTP API. It owns the transient/permanent
// classification of failures: network errors and server-side conditions are
// retryable, client-side rejections are not.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"wayfarer/pkg/syncer"
)

// Client talks to the prompt service. Safe for concurrent use.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewClient creates a Client for the prompt service at baseURL.
// token may be empty for unauthenticated deployments.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{},
	}
}

// createRequest is the JSON body for POST /v1/prompts.
type createRequest struct {
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"` // epoch milliseconds
}

// createResponse is the JSON response from POST /v1/prompts.
type createResponse struct {
	ID string `json:"id"`
}

// Create implements syncer.RemoteStore.
func (c *Client) Create(ctx context.Context, text string, timestamp time.Time) (string, error) {
	body, err := json.Marshal(createRequest{Text: text, Timestamp: timestamp.UnixMilli()})
	if err != nil {
		return "", syncer.Permanent(fmt.Errorf("marshal create request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/prompts", bytes.NewReader(body))
	if err != nil {
		return "", syncer.Permanent(fmt.Errorf("build create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", syncer.Transient(fmt.Errorf("create prompt: %w", err))
	}
	defer resp.Body.Close()

	if err := classifyStatus(resp); err != nil {
		return "", err
	}

	var out createResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", syncer.Transient(fmt.Errorf("decode create response: %w", err))
	}
	if out.ID == "" {
		return "", syncer.Transient(fmt.Errorf("create response carried no document id"))
	}
	return out.ID, nil
}

// Delete implements syncer.RemoteStore. Deleting an unknown document id is
// not an error: the remote row is gone either way.
func (c *Client) Delete(ctx context.Context, remoteID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/v1/prompts/"+remoteID, nil)
	if err != nil {
		return syncer.Permanent(fmt.Errorf("build delete request: %w", err))
	}
	c.authorize(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return syncer.Transient(fmt.Errorf("delete prompt %s: %w", remoteID, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	return classifyStatus(resp)
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

// classifyStatus maps a non-2xx response to a classified remote error.
// 5xx and 429 are worth retrying; any other 4xx means the service refused
// the request and a retry cannot change that.
func classifyStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	err := fmt.Errorf("prompt service returned %s: %s", resp.Status, bytes.TrimSpace(detail))

	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return syncer.Transient(err)
	}
	return syncer.Permanent(err)
}
