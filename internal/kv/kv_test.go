package kv_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bizdesk/bizdesk/internal/kv"
)

type doc struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// --- MemoryStore Tests ---

func TestMemoryStore_SetGetDelete(t *testing.T) {
	s := kv.NewMemoryStore()
	ctx := context.Background()

	_, found, err := s.GetRaw(ctx, "app_missing")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.SetRaw(ctx, "app_key", []byte(`{"a":1}`)))

	raw, found, err := s.GetRaw(ctx, "app_key")
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `{"a":1}`, string(raw))

	require.NoError(t, s.Delete(ctx, "app_key"))
	_, found, err = s.GetRaw(ctx, "app_key")
	require.NoError(t, err)
	assert.False(t, found)

	// Deleting again is not an error.
	require.NoError(t, s.Delete(ctx, "app_key"))
}

func TestMemoryStore_Keys(t *testing.T) {
	s := kv.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.SetRaw(ctx, "app_session_1", []byte(`1`)))
	require.NoError(t, s.SetRaw(ctx, "app_session_2", []byte(`2`)))
	require.NoError(t, s.SetRaw(ctx, "app_users", []byte(`[]`)))

	keys, err := s.Keys(ctx, "app_session_")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"app_session_1", "app_session_2"}, keys)
}

func TestMemoryStore_Closed(t *testing.T) {
	s := kv.NewMemoryStore()
	require.NoError(t, s.Close())

	err := s.SetRaw(context.Background(), "k", []byte(`1`))
	assert.ErrorIs(t, err, kv.ErrClosed)
	assert.ErrorIs(t, s.Ping(context.Background()), kv.ErrClosed)
}

// --- Typed helper Tests ---

func TestGet_DecodesStoredValue(t *testing.T) {
	s := kv.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, s, "app_doc", doc{Name: "acme", Count: 3}))

	got, found, err := kv.Get[doc](ctx, s, "app_doc")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, doc{Name: "acme", Count: 3}, got)
}

func TestGet_CorruptValueTreatedAsAbsent(t *testing.T) {
	s := kv.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.SetRaw(ctx, "app_doc", []byte(`{not json`)))

	got, found, err := kv.Get[doc](ctx, s, "app_doc")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Zero(t, got)
}

func TestGet_MismatchedShapeTreatedAsAbsent(t *testing.T) {
	s := kv.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.SetRaw(ctx, "app_doc", []byte(`"just a string"`)))

	_, found, err := kv.Get[doc](ctx, s, "app_doc")
	require.NoError(t, err)
	assert.False(t, found)
}

// --- FileStore Tests ---

func TestFileStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	ctx := context.Background()

	s, err := kv.NewFileStore(path)
	require.NoError(t, err)

	require.NoError(t, kv.Set(ctx, s, "app_doc", doc{Name: "acme", Count: 7}))
	require.NoError(t, s.Close())

	reopened, err := kv.NewFileStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, found, err := kv.Get[doc](ctx, reopened, "app_doc")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, doc{Name: "acme", Count: 7}, got)
}

func TestFileStore_DeleteAndKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	ctx := context.Background()

	s, err := kv.NewFileStore(path)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.SetRaw(ctx, "app_a", []byte(`1`)))
	require.NoError(t, s.SetRaw(ctx, "app_b", []byte(`2`)))
	require.NoError(t, s.SetRaw(ctx, "other", []byte(`3`)))

	keys, err := s.Keys(ctx, "app_")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"app_a", "app_b"}, keys)

	require.NoError(t, s.Delete(ctx, "app_a"))
	_, found, err := s.GetRaw(ctx, "app_a")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Ping(ctx))
}

func TestFileStore_MissingFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.json")

	s, err := kv.NewFileStore(path)
	require.NoError(t, err)
	defer s.Close()

	keys, err := s.Keys(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, keys)
}
