package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	data := []byte("GIF89a")
	require.NoError(t, store.Put(ctx, "recipe_images/b.gif", data, "image/gif"))
	assert.Equal(t, 1, store.Len())

	// mutating the caller's slice must not change the stored object
	data[0] = 'X'
	got, err := store.Get(ctx, "recipe_images/b.gif")
	require.NoError(t, err)
	assert.Equal(t, []byte("GIF89a"), got)

	ok, err := store.Exists(ctx, "recipe_images/b.gif")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, store.Delete(ctx, "recipe_images/b.gif"))
	_, err = store.Get(ctx, "recipe_images/b.gif")
	assert.ErrorIs(t, err, ErrObjectNotFound)
	assert.Equal(t, 0, store.Len())
}
