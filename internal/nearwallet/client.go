// Package nearwallet adapts the NEAR-style wallet service: authorization
// happens through an explicit sign-in round trip, and the resulting session
// token is persisted so the user stays signed in across restarts.
package nearwallet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"publicsquare/internal/domain"
	"publicsquare/internal/sessionstore"
)

const providerName = string(domain.ProviderNEAR)

// SessionStore persists this provider's sign-in state between runs.
type SessionStore interface {
	GetSession(ctx context.Context, provider string) (sessionstore.Session, error)
	PutSession(ctx context.Context, sess sessionstore.Session) error
	DeleteSession(ctx context.Context, provider string) error
}

// Client implements domain.WalletProvider and domain.RecordSigner against
// the wallet service's HTTP API.
type Client struct {
	walletURL  string
	httpClient *http.Client
	store      SessionStore
}

// NewClient creates a wallet-service client. Sign-in round trips can take
// as long as the user deliberates, so no client timeout is applied here;
// callers bound the wait through the context.
func NewClient(walletURL string, store SessionStore) *Client {
	return &Client{
		walletURL:  walletURL,
		httpClient: &http.Client{},
		store:      store,
	}
}

// Tag identifies this provider.
func (c *Client) Tag() domain.ProviderTag { return domain.ProviderNEAR }

// SignedIn reports whether a persisted authorized session exists.
func (c *Client) SignedIn(ctx context.Context) (bool, error) {
	sess, err := c.store.GetSession(ctx, providerName)
	if err != nil {
		return false, fmt.Errorf("load session: %w", err)
	}
	return sess.Token != "", nil
}

// Address returns the signed-in account's wallet address.
func (c *Client) Address(ctx context.Context) (string, error) {
	sess, err := c.store.GetSession(ctx, providerName)
	if err != nil {
		return "", fmt.Errorf("load session: %w", err)
	}
	return sess.Address, nil
}

type signInResponse struct {
	Address string `json:"address"`
	Token   string `json:"token"`
}

// RequestSignIn triggers the wallet service's authorization flow and blocks
// until the user approves or the service rejects. On success the session is
// persisted.
func (c *Client) RequestSignIn(ctx context.Context) error {
	body := map[string]string{"app": domain.AppName}

	var resp signInResponse
	if err := c.post(ctx, "/session/request", body, "", &resp); err != nil {
		return fmt.Errorf("request sign-in: %w", err)
	}
	if resp.Token == "" || resp.Address == "" {
		return fmt.Errorf("wallet service returned an incomplete session")
	}

	sess := sessionstore.Session{
		Provider:  providerName,
		Address:   resp.Address,
		Token:     resp.Token,
		UpdatedAt: time.Now().UTC(),
	}
	if err := c.store.PutSession(ctx, sess); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

// SignOut revokes the session with the wallet service and clears the
// persisted state.
func (c *Client) SignOut(ctx context.Context) error {
	sess, err := c.store.GetSession(ctx, providerName)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if sess.Token != "" {
		if err := c.post(ctx, "/session/signout", map[string]string{}, sess.Token, nil); err != nil {
			return fmt.Errorf("sign out: %w", err)
		}
	}
	return c.store.DeleteSession(ctx, providerName)
}

type signRequest struct {
	Data []byte       `json:"data"`
	Tags []domain.Tag `json:"tags"`
}

type signResponse struct {
	Owner     string `json:"owner"`
	Signature []byte `json:"signature"`
}

// SignRecord signs a constructed record with the signed-in wallet's key.
func (c *Client) SignRecord(ctx context.Context, rec *domain.Record) (*domain.SignedRecord, error) {
	sess, err := c.store.GetSession(ctx, providerName)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if sess.Token == "" {
		return nil, fmt.Errorf("not signed in")
	}

	var resp signResponse
	req := signRequest{Data: rec.Data, Tags: rec.Tags}
	if err := c.post(ctx, "/sign", req, sess.Token, &resp); err != nil {
		return nil, fmt.Errorf("sign: %w", err)
	}
	if len(resp.Signature) == 0 {
		return nil, fmt.Errorf("wallet service returned no signature")
	}

	return &domain.SignedRecord{
		Data:      rec.Data,
		Tags:      rec.Tags,
		Owner:     resp.Owner,
		Signature: resp.Signature,
	}, nil
}

func (c *Client) post(ctx context.Context, path string, body any, token string, result any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.walletURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

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
		return fmt.Errorf("wallet service error (status %d): %s", resp.StatusCode, string(respBody))
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}

	return nil
}
