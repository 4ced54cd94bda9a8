package memory

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cubby/internal/domain/storage"
)

func TestPutAndOpen(t *testing.T) {
	ctx := context.Background()
	store := New()

	err := store.Put(ctx, "ws1/f1", strings.NewReader("hello world"), 11, "text/plain")
	require.NoError(t, err)

	rc, err := store.Open(ctx, "ws1/f1")
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))
}

func TestPutSizeMismatch(t *testing.T) {
	store := New()

	err := store.Put(context.Background(), "ws1/f1", strings.NewReader("hello"), 99, "text/plain")
	assert.Error(t, err)

	exists, err := store.Exists(context.Background(), "ws1/f1")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestPutOverwrites(t *testing.T) {
	ctx := context.Background()
	store := New()

	require.NoError(t, store.Put(ctx, "k", strings.NewReader("one"), 3, ""))
	require.NoError(t, store.Put(ctx, "k", strings.NewReader("two"), 3, ""))

	rc, err := store.Open(ctx, "k")
	require.NoError(t, err)
	defer rc.Close()

	data, _ := io.ReadAll(rc)
	assert.Equal(t, "two", string(data))
}

func TestOpenMissing(t *testing.T) {
	store := New()

	_, err := store.Open(context.Background(), "nope")
	assert.ErrorIs(t, err, storage.ErrBlobNotFound)
}

func TestExists(t *testing.T) {
	ctx := context.Background()
	store := New()

	exists, err := store.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, store.Put(ctx, "k", strings.NewReader("x"), 1, ""))

	exists, err = store.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	store := New()

	require.NoError(t, store.Put(ctx, "k", strings.NewReader("x"), 1, ""))
	require.NoError(t, store.Delete(ctx, "k"))

	exists, err := store.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, exists)

	err = store.Delete(ctx, "k")
	assert.ErrorIs(t, err, storage.ErrBlobNotFound)
}

func TestCopy(t *testing.T) {
	ctx := context.Background()
	store := New()

	require.NoError(t, store.Put(ctx, "src", strings.NewReader("payload"), 7, "application/pdf"))
	require.NoError(t, store.Copy(ctx, "src", "dst"))

	// Copies are detached: deleting the source leaves the copy intact
	require.NoError(t, store.Delete(ctx, "src"))

	rc, err := store.Open(ctx, "dst")
	require.NoError(t, err)
	defer rc.Close()

	data, _ := io.ReadAll(rc)
	assert.Equal(t, "payload", string(data))
}

func TestCopyMissingSource(t *testing.T) {
	store := New()

	err := store.Copy(context.Background(), "nope", "dst")
	assert.ErrorIs(t, err, storage.ErrBlobNotFound)
}

func TestPresignDownload(t *testing.T) {
	ctx := context.Background()
	store := New()

	require.NoError(t, store.Put(ctx, "ws1/f1", strings.NewReader("x"), 1, ""))

	url, err := store.PresignDownload(ctx, "ws1/f1", "report.pdf", 15*time.Minute)
	require.NoError(t, err)
	assert.Contains(t, url, "ws1/f1")
	assert.Contains(t, url, "report.pdf")

	_, err = store.PresignDownload(ctx, "missing", "x.pdf", time.Minute)
	assert.ErrorIs(t, err, storage.ErrBlobNotFound)
}
