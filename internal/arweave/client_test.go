package arweave

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"publicsquare/internal/domain"
)

const queryFixture = `{
  "data": {
    "transactions": {
      "edges": [
        {
          "node": {
            "id": "tx1",
            "owner": {"address": "Zx9f2mQ7pL4wRt8yNs3v"},
            "data": {"size": "42"},
            "block": {"timestamp": 1714564800},
            "tags": [
              {"name": "App-Name", "value": "PublicSquare"},
              {"name": "Type", "value": "post"},
              {"name": "Topic", "value": "gardening"}
            ]
          }
        },
        {
          "node": {
            "id": "tx2",
            "owner": {"address": "Ab1c2d3e4f5g6h7i8j9k"},
            "data": {"size": "7"},
            "block": null,
            "tags": [
              {"name": "App-Name", "value": "PublicSquare"},
              {"name": "Type", "value": "post"}
            ]
          }
        }
      ]
    }
  }
}`

func TestExecuteParsesEdges(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/graphql", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &gotBody))
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, queryFixture)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	records, err := c.Execute(context.Background(), domain.BuildQuery(domain.TopicScope("gardening")))

	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "tx1", records[0].ID)
	assert.Equal(t, "Zx9f2mQ7pL4wRt8yNs3v", records[0].Owner)
	assert.Equal(t, int64(42), records[0].DataSize)
	assert.Equal(t, time.Unix(1714564800, 0).UTC(), records[0].BlockTime)
	topic, ok := records[0].TagValue("Topic")
	assert.True(t, ok)
	assert.Equal(t, "gardening", topic)

	assert.True(t, records[1].BlockTime.IsZero(), "unconfirmed records carry no block time")

	variables, ok := gotBody["variables"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(domain.DefaultPageSize), variables["first"])
	assert.Equal(t, "HEIGHT_DESC", variables["sort"])
	assert.NotContains(t, variables, "owners", "topic queries do not filter on owners")
}

func TestExecuteSendsOwnersForAuthorScope(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &gotBody))
		io.WriteString(w, `{"data":{"transactions":{"edges":[]}}}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Execute(context.Background(), domain.BuildQuery(domain.AuthorScope("Zx9f2mQ7pL4wRt8yNs3v")))

	require.NoError(t, err)
	variables := gotBody["variables"].(map[string]any)
	assert.Equal(t, []any{"Zx9f2mQ7pL4wRt8yNs3v"}, variables["owners"])
}

func TestExecuteGraphQLError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, `{"errors":[{"message":"query too deep"}]}`)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Execute(context.Background(), domain.BuildQuery(domain.AllScope()))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "query too deep")
}

func TestExecuteHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Execute(context.Background(), domain.BuildQuery(domain.AllScope()))

	assert.Error(t, err)
}

func TestData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/tx1", r.URL.Path)
		io.WriteString(w, "hello permaweb")
	}))
	defer srv.Close()

	body, err := NewClient(srv.URL).Data(context.Background(), "tx1")

	require.NoError(t, err)
	assert.Equal(t, "hello permaweb", string(body))
}

func TestUpload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/tx", r.URL.Path)

		var rec domain.SignedRecord
		require.NoError(t, json.NewDecoder(r.Body).Decode(&rec))
		assert.Equal(t, "hello", string(rec.Data))
		assert.NotEmpty(t, rec.Signature)

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"tx123"}`)
	}))
	defer srv.Close()

	id, err := NewClient(srv.URL).Upload(context.Background(), &domain.SignedRecord{
		Data:      []byte("hello"),
		Tags:      domain.PostTags(domain.ProviderNEAR),
		Owner:     "Zx9f2mQ7pL4wRt8yNs3v",
		Signature: []byte("sig"),
	})

	require.NoError(t, err)
	assert.Equal(t, "tx123", id)
}

func TestUploadMissingID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, `{}`)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Upload(context.Background(), &domain.SignedRecord{})

	assert.Error(t, err)
}
