// Package storage defines the blob boundary the drive engine writes
// through. The engine never talks to a concrete object store directly;
// implementations live under internal/storage.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrBlobNotFound is returned by Open and Delete when the key does not
// exist. Deletion of an already-absent blob is not a failure for the
// engine's storage-first delete ordering.
var ErrBlobNotFound = errors.New("blob not found")

// BlobStore is the persistence boundary for file bytes. Keys are opaque
// strings scoped by workspace ("{workspaceID}/{fileID}").
type BlobStore interface {
	// Exists reports whether a blob occupies the key. Used by the naming
	// resolver's dual collision check: a key can be occupied by a prior
	// failed upload even when no metadata record points at it.
	Exists(ctx context.Context, key string) (bool, error)

	// Put stores the content at key, overwriting any existing blob
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error

	// Open returns a reader over the blob content.
	// Returns ErrBlobNotFound if the key does not exist.
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the blob. Returns ErrBlobNotFound if the key does
	// not exist; any other error means the blob may still be present.
	Delete(ctx context.Context, key string) error

	// Copy duplicates src to dst within the store (cross-tree drops
	// resolve to copies, detached from the original records)
	Copy(ctx context.Context, src, dst string) error

	// PresignDownload returns a time-limited download URL. The filename
	// is the original display name, carried in the content-disposition
	// so encoded storage keys round-trip losslessly.
	PresignDownload(ctx context.Context, key, filename string, ttl time.Duration) (string, error)
}
