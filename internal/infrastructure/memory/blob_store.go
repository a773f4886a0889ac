package memory

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/oksasatya/online-school/pkg/helpers"
)

type Blob struct {
	ContentType string
	Data        []byte
}

// BlobStore is an in-process stand-in for the bucket storage.
type BlobStore struct {
	mu    sync.RWMutex
	blobs map[string]Blob
}

func NewBlobStore() *BlobStore {
	return &BlobStore{blobs: make(map[string]Blob)}
}

func (s *BlobStore) Put(ctx context.Context, bucket, filename, contentType string, r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	key := helpers.ObjectKey(bucket, filename)
	s.mu.Lock()
	s.blobs[key] = Blob{ContentType: contentType, Data: b}
	s.mu.Unlock()
	return key, nil
}

func (s *BlobStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blobs[key]; !ok {
		return fmt.Errorf("blob %q not found", key)
	}
	delete(s.blobs, key)
	return nil
}

func (s *BlobStore) URL(key string) string {
	return "/blobs/" + key
}

func (s *BlobStore) Get(key string) (Blob, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.blobs[key]
	return b, ok
}

func (s *BlobStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
