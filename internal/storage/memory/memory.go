// Package memory implements an in-memory blob store for development and
// tests. Contents live in a map; nothing survives a restart.
package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"sync"
	"time"

	"cubby/internal/domain/storage"
)

type blob struct {
	data        []byte
	contentType string
}

// BlobStore is a map-backed storage.BlobStore. Safe for concurrent use.
type BlobStore struct {
	mu    sync.RWMutex
	blobs map[string]blob
}

// New creates an empty in-memory blob store
func New() *BlobStore {
	return &BlobStore{blobs: make(map[string]blob)}
}

// Exists reports whether a blob occupies the key
func (s *BlobStore) Exists(ctx context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.blobs[key]
	return ok, nil
}

// Put stores the content at key, overwriting any existing blob
func (s *BlobStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read content: %w", err)
	}
	if size >= 0 && int64(len(data)) != size {
		return fmt.Errorf("content size mismatch: declared %d, read %d", size, len(data))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.blobs[key] = blob{data: data, contentType: contentType}
	return nil
}

// Open returns a reader over the blob content
func (s *BlobStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.blobs[key]
	if !ok {
		return nil, fmt.Errorf("blob %s: %w", key, storage.ErrBlobNotFound)
	}
	return io.NopCloser(bytes.NewReader(b.data)), nil
}

// Delete removes the blob
func (s *BlobStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.blobs[key]; !ok {
		return fmt.Errorf("blob %s: %w", key, storage.ErrBlobNotFound)
	}
	delete(s.blobs, key)
	return nil
}

// Copy duplicates src to dst within the store
func (s *BlobStore) Copy(ctx context.Context, src, dst string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.blobs[src]
	if !ok {
		return fmt.Errorf("blob %s: %w", src, storage.ErrBlobNotFound)
	}

	data := make([]byte, len(b.data))
	copy(data, b.data)
	s.blobs[dst] = blob{data: data, contentType: b.contentType}
	return nil
}

// PresignDownload returns a fake URL in the shape real stores produce.
// Useful for exercising download flows in tests and local development.
func (s *BlobStore) PresignDownload(ctx context.Context, key, filename string, ttl time.Duration) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.blobs[key]; !ok {
		return "", fmt.Errorf("blob %s: %w", key, storage.ErrBlobNotFound)
	}

	q := url.Values{}
	q.Set("filename", filename)
	q.Set("expires", time.Now().Add(ttl).UTC().Format(time.RFC3339))
	return "memory://" + key + "?" + q.Encode(), nil
}
