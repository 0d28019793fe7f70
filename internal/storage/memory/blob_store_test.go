package memory

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlobStorePutAndGet(t *testing.T) {
	t.Parallel()

	store := NewBlobStore()
	uri, err := store.PutObject(context.Background(), "crawls/acme/run.json", "application/json", bytes.NewReader([]byte("[]")))
	require.NoError(t, err)
	assert.Equal(t, "memory://crawls/acme/run.json", uri)

	obj, ok := store.Get("crawls/acme/run.json")
	require.True(t, ok)
	assert.Equal(t, "application/json", obj.ContentType)
	assert.Equal(t, "[]", string(obj.Data))

	obj.Data[0] = 'X'
	again, _ := store.Get("crawls/acme/run.json")
	assert.Equal(t, "[]", string(again.Data), "callers get copies")

	_, ok = store.Get("missing")
	assert.False(t, ok)
}

func TestBlobStorePaths(t *testing.T) {
	t.Parallel()

	store := NewBlobStore()
	for _, p := range []string{"b", "a", "c"} {
		_, err := store.PutObject(context.Background(), p, "", bytes.NewReader(nil))
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"a", "b", "c"}, store.Paths())

	_, err := store.PutObject(context.Background(), "", "", bytes.NewReader(nil))
	assert.Error(t, err)
}
