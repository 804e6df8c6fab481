// Package bundlr is a client for the funding backend that prepays ledger
// storage cost before a record may be uploaded.
package bundlr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to a single bundler node.
type Client struct {
	node       string
	httpClient *http.Client
}

// NewClient creates a funding client for the given bundler node URL.
func NewClient(node string) *Client {
	return &Client{
		node: node,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type fundRequest struct {
	Bytes int `json:"bytes"`
}

type fundResponse struct {
	Funded bool `json:"funded"`
}

// Fund requests storage credit sized to byteLength and reports whether
// sufficient credit now exists. A declined funding is not an error.
func (c *Client) Fund(ctx context.Context, byteLength int) (bool, error) {
	payload, err := json.Marshal(fundRequest{Bytes: byteLength})
	if err != nil {
		return false, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.node+"/fund", bytes.NewReader(payload))
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("read response: %w", err)
	}

	// 402 means the node could not credit the account; that's a normal
	// funded=false outcome, not a transport failure.
	if resp.StatusCode == http.StatusPaymentRequired {
		return false, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, fmt.Errorf("bundler error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var result fundResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return false, fmt.Errorf("unmarshal response: %w", err)
	}
	return result.Funded, nil
}
