package sessionstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestGetSessionMissing(t *testing.T) {
	store := newTestStore(t)

	sess, err := store.GetSession(context.Background(), "near")

	require.NoError(t, err)
	assert.Empty(t, sess.Token, "a missing session is a zero value, not an error")
}

func TestPutAndGetSession(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.PutSession(ctx, Session{
		Provider: "near",
		Address:  "alice.near.mainnet",
		Token:    "tok-1",
	})
	require.NoError(t, err)

	sess, err := store.GetSession(ctx, "near")
	require.NoError(t, err)
	assert.Equal(t, "alice.near.mainnet", sess.Address)
	assert.Equal(t, "tok-1", sess.Token)
	assert.False(t, sess.UpdatedAt.IsZero())
}

func TestPutSessionUpserts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.PutSession(ctx, Session{Provider: "near", Address: "alice.near.mainnet", Token: "tok-1"}))
	require.NoError(t, store.PutSession(ctx, Session{Provider: "near", Address: "alice.near.mainnet", Token: "tok-2"}))

	sess, err := store.GetSession(ctx, "near")
	require.NoError(t, err)
	assert.Equal(t, "tok-2", sess.Token)
}

func TestDeleteSession(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.PutSession(ctx, Session{Provider: "near", Address: "a", Token: "t"}))
	require.NoError(t, store.DeleteSession(ctx, "near"))

	sess, err := store.GetSession(ctx, "near")
	require.NoError(t, err)
	assert.Empty(t, sess.Token)
}

func TestSessionsAreScopedByProvider(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.PutSession(ctx, Session{Provider: "near", Address: "a", Token: "t1"}))
	require.NoError(t, store.PutSession(ctx, Session{Provider: "arconnect", Address: "b", Token: "t2"}))
	require.NoError(t, store.DeleteSession(ctx, "near"))

	sess, err := store.GetSession(ctx, "arconnect")
	require.NoError(t, err)
	assert.Equal(t, "t2", sess.Token)
}
