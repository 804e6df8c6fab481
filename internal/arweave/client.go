// Package arweave is a minimal client for an Arweave-style gateway: the
// GraphQL query service, raw record data, and the transaction endpoint.
package arweave

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"publicsquare/internal/domain"
)

const defaultGateway = "https://arweave.net"

// transactionsQuery is the shape of every ledger retrieval. Scope-specific
// filters arrive through the variables, never by editing the query text.
const transactionsQuery = `query ($first: Int!, $sort: SortOrder!, $tags: [TagFilter!], $owners: [String!]) {
  transactions(first: $first, sort: $sort, tags: $tags, owners: $owners) {
    edges {
      node {
        id
        owner { address }
        data { size }
        block { timestamp }
        tags { name value }
      }
    }
  }
}`

// Client talks to a single gateway host.
type Client struct {
	gateway    string
	httpClient *http.Client
}

// NewClient creates a gateway client. If gateway is empty, it defaults to
// https://arweave.net.
func NewClient(gateway string) *Client {
	if gateway == "" {
		gateway = defaultGateway
	}
	return &Client{
		gateway: gateway,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Execute runs a query descriptor against the gateway's GraphQL endpoint
// and returns the matching edges in the order the gateway delivered them.
func (c *Client) Execute(ctx context.Context, q domain.QueryDescriptor) ([]domain.RawRecord, error) {
	variables := map[string]any{
		"first": q.First,
		"sort":  q.Sort,
		"tags":  q.Tags,
	}
	if len(q.Owners) > 0 {
		variables["owners"] = q.Owners
	}

	body := map[string]any{
		"query":     transactionsQuery,
		"variables": variables,
	}

	var resp graphqlResponse
	if err := c.post(ctx, "/graphql", body, &resp); err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("graphql error: %s", resp.Errors[0].Message)
	}

	edges := resp.Data.Transactions.Edges
	records := make([]domain.RawRecord, 0, len(edges))
	for _, e := range edges {
		records = append(records, toRawRecord(e.Node))
	}
	return records, nil
}

// Data fetches the raw body of a stored record by content id.
func (c *Client) Data(ctx context.Context, id string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.gateway+"/"+id, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("gateway error (status %d): %s", resp.StatusCode, string(body))
	}

	return body, nil
}

// Upload submits a signed record to the storage endpoint and returns the
// assigned content id.
func (c *Client) Upload(ctx context.Context, rec *domain.SignedRecord) (string, error) {
	var resp submitResponse
	if err := c.post(ctx, "/tx", rec, &resp); err != nil {
		return "", fmt.Errorf("submit record: %w", err)
	}
	if resp.ID == "" {
		return "", fmt.Errorf("gateway returned no content id")
	}
	return resp.ID, nil
}

func (c *Client) post(ctx context.Context, path string, body any, result any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.gateway+path, bytes.NewReader(payload))
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
		return fmt.Errorf("gateway error (status %d): %s", resp.StatusCode, string(respBody))
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}

	return nil
}

type graphqlResponse struct {
	Data struct {
		Transactions struct {
			Edges []struct {
				Node edgeNode `json:"node"`
			} `json:"edges"`
		} `json:"transactions"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

type edgeNode struct {
	ID    string `json:"id"`
	Owner struct {
		Address string `json:"address"`
	} `json:"owner"`
	Data struct {
		// The gateway serializes sizes as strings.
		Size string `json:"size"`
	} `json:"data"`
	Block *struct {
		Timestamp int64 `json:"timestamp"`
	} `json:"block"`
	Tags []domain.Tag `json:"tags"`
}

type submitResponse struct {
	ID string `json:"id"`
}

func toRawRecord(n edgeNode) domain.RawRecord {
	r := domain.RawRecord{
		ID:    n.ID,
		Owner: n.Owner.Address,
		Tags:  n.Tags,
	}
	if size, err := strconv.ParseInt(n.Data.Size, 10, 64); err == nil {
		r.DataSize = size
	}
	if n.Block != nil {
		r.BlockTime = time.Unix(n.Block.Timestamp, 0).UTC()
	}
	return r
}
