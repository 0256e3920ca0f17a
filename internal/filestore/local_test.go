package filestore

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/docchat/docchat/internal/config"
)

func TestLocalStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := New(config.FileStoreConfig{Type: "local", Dir: t.TempDir()})
	require.NoError(t, err)
	require.Equal(t, "local", store.Type())

	data := []byte("%PDF-1.4 fake body")
	require.NoError(t, store.Save(ctx, "doc.pdf", data))

	rc, err := store.Open(ctx, "doc.pdf")
	require.NoError(t, err)
	defer rc.Close()
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, data, got)

	require.NoError(t, store.Delete(ctx, "doc.pdf"))
	_, err = store.Open(ctx, "doc.pdf")
	require.Error(t, err)

	// deleting a missing key is not an error
	require.NoError(t, store.Delete(ctx, "doc.pdf"))
}

func TestLocalStoreRejectsTraversal(t *testing.T) {
	ctx := context.Background()
	store, err := New(config.FileStoreConfig{Type: "local", Dir: t.TempDir()})
	require.NoError(t, err)

	for _, key := range []string{"", "../escape.pdf", "a/b.pdf", `a\b.pdf`} {
		require.Error(t, store.Save(ctx, key, []byte("x")), "key %q", key)
	}
}

func TestNewUnknownType(t *testing.T) {
	_, err := New(config.FileStoreConfig{Type: "ftp"})
	require.Error(t, err)
}
