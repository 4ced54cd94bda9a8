package drive

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cubby/internal/domain"
	"cubby/internal/storage/memory"
)

func readArchive(t *testing.T, data []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	entries := make(map[string]string, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		content, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		entries[f.Name] = string(content)
	}
	return entries
}

func TestBuildArchive(t *testing.T) {
	env := newTestEnv(nil)
	ctx := context.Background()

	root := env.mustCreateFolder(t, testWS, "project", nil)
	assets := env.mustCreateFolder(t, testWS, "assets", &root.ID)
	env.mustCreateFolder(t, testWS, "notes", &root.ID) // stays empty
	env.mustUploadFile(t, testWS, "readme.md", &root.ID, "hello")
	env.mustUploadFile(t, testWS, "logo.png", &assets.ID, "png-bytes")

	var buf bytes.Buffer
	require.NoError(t, env.archiveSvc.BuildArchive(ctx, root.ID, testWS, &buf))

	entries := readArchive(t, buf.Bytes())
	assert.Len(t, entries, 3)
	assert.Equal(t, "hello", entries["readme.md"])
	assert.Equal(t, "png-bytes", entries["assets/logo.png"])

	// The empty folder survives as an explicit directory entry
	_, ok := entries["notes/"]
	assert.True(t, ok, "expected a directory entry for the empty folder")
}

func TestBuildArchiveEntryNamesAreDisplayPaths(t *testing.T) {
	env := newTestEnv(nil)
	ctx := context.Background()

	root := env.mustCreateFolder(t, testWS, "Фото", nil)
	sub := env.mustCreateFolder(t, testWS, "Q3 Reports", &root.ID)
	env.mustUploadFile(t, testWS, "отчёт (final).pdf", &sub.ID, "pdf")

	var buf bytes.Buffer
	require.NoError(t, env.archiveSvc.BuildArchive(ctx, root.ID, testWS, &buf))

	entries := readArchive(t, buf.Bytes())
	_, ok := entries["Q3 Reports/отчёт (final).pdf"]
	assert.True(t, ok, "entry names must be display paths, got %v", keysOf(entries))
}

func TestBuildArchiveEmptyFolder(t *testing.T) {
	env := newTestEnv(nil)
	ctx := context.Background()

	root := env.mustCreateFolder(t, testWS, "empty", nil)

	var buf bytes.Buffer
	require.NoError(t, env.archiveSvc.BuildArchive(ctx, root.ID, testWS, &buf))

	// A valid zip with no entries
	entries := readArchive(t, buf.Bytes())
	assert.Empty(t, entries)
}

func TestBuildArchiveMissingFolder(t *testing.T) {
	env := newTestEnv(nil)

	var buf bytes.Buffer
	err := env.archiveSvc.BuildArchive(context.Background(), "no-such-folder", testWS, &buf)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Zero(t, buf.Len(), "nothing may be written before validation passes")
}

func TestBuildArchiveBlobFailure(t *testing.T) {
	mem := memory.New()
	flaky := &flakyBlobStore{BlobStore: mem, failOpen: map[string]error{}}
	env := newTestEnv(flaky)
	ctx := context.Background()

	root := env.mustCreateFolder(t, testWS, "project", nil)
	file := env.mustUploadFile(t, testWS, "readme.md", &root.ID, "hello")
	flaky.failOpen[file.StorageKey] = errors.New("connection reset")

	var buf bytes.Buffer
	err := env.archiveSvc.BuildArchive(ctx, root.ID, testWS, &buf)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStorage)
}

func TestArchiveName(t *testing.T) {
	env := newTestEnv(nil)
	folder := env.mustCreateFolder(t, testWS, "Q3 Reports", nil)

	name, err := env.archiveSvc.ArchiveName(context.Background(), folder.ID, testWS)
	require.NoError(t, err)
	assert.Equal(t, "Q3 Reports.zip", name)

	_, err = env.archiveSvc.ArchiveName(context.Background(), "missing", testWS)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func keysOf(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
