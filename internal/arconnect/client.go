// Package arconnect adapts the browser-extension style wallet agent: the
// active address is an ambient, non-interactive read, so connecting never
// triggers an authorization round trip.
package arconnect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"publicsquare/internal/domain"
)

// Client implements domain.AmbientAddressProvider and domain.RecordSigner
// against the local wallet agent's HTTP API.
type Client struct {
	agentURL   string
	httpClient *http.Client
}

// NewClient creates a wallet-agent client.
func NewClient(agentURL string) *Client {
	return &Client{
		agentURL: agentURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Tag identifies this provider.
func (c *Client) Tag() domain.ProviderTag { return domain.ProviderArConnect }

type addressResponse struct {
	Address string `json:"address"`
}

// ActiveAddress reads the agent's active wallet address. No active wallet
// yields an empty address, not an error.
func (c *Client) ActiveAddress(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.agentURL+"/address", nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return "", nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("wallet agent error (status %d): %s", resp.StatusCode, string(body))
	}

	var result addressResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	return result.Address, nil
}

// SignedIn reports whether the agent currently has an active wallet.
func (c *Client) SignedIn(ctx context.Context) (bool, error) {
	addr, err := c.ActiveAddress(ctx)
	if err != nil {
		return false, err
	}
	return addr != "", nil
}

// Address returns the active wallet address.
func (c *Client) Address(ctx context.Context) (string, error) {
	return c.ActiveAddress(ctx)
}

// RequestSignIn asks the agent to unlock a wallet. For this provider the
// address read is ambient, so this is only needed when no wallet is active.
func (c *Client) RequestSignIn(ctx context.Context) error {
	if err := c.post(ctx, "/connect", map[string]string{"app": domain.AppName}, nil); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	return nil
}

// SignOut disconnects the agent's active wallet.
func (c *Client) SignOut(ctx context.Context) error {
	if err := c.post(ctx, "/disconnect", map[string]string{}, nil); err != nil {
		return fmt.Errorf("disconnect: %w", err)
	}
	return nil
}

type signRequest struct {
	Data []byte       `json:"data"`
	Tags []domain.Tag `json:"tags"`
}

type signResponse struct {
	Owner     string `json:"owner"`
	Signature []byte `json:"signature"`
}

// SignRecord signs a constructed record with the agent's active wallet.
func (c *Client) SignRecord(ctx context.Context, rec *domain.Record) (*domain.SignedRecord, error) {
	var resp signResponse
	if err := c.post(ctx, "/sign", signRequest{Data: rec.Data, Tags: rec.Tags}, &resp); err != nil {
		return nil, fmt.Errorf("sign: %w", err)
	}
	if len(resp.Signature) == 0 {
		return nil, fmt.Errorf("wallet agent returned no signature")
	}

	return &domain.SignedRecord{
		Data:      rec.Data,
		Tags:      rec.Tags,
		Owner:     resp.Owner,
		Signature: resp.Signature,
	}, nil
}

func (c *Client) post(ctx context.Context, path string, body any, result any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.agentURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("wallet agent error (status %d): %s", resp.StatusCode, string(respBody))
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}

	return nil
}
