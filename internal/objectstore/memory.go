package objectstore

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryStore keeps blobs in process memory. Used in tests and local
// development without an object storage endpoint.
type MemoryStore struct {
	mu      sync.RWMutex
	buckets map[string]map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		buckets: make(map[string]map[string][]byte),
	}
}

func (m *MemoryStore) Upload(ctx context.Context, bucket, path string, data []byte, contentType string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.buckets[bucket] == nil {
		m.buckets[bucket] = make(map[string][]byte)
	}
	stored := make([]byte, len(data))
	copy(stored, data)
	m.buckets[bucket][path] = stored
	return path, nil
}

func (m *MemoryStore) Remove(ctx context.Context, bucket string, paths []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	objects, ok := m.buckets[bucket]
	if !ok {
		return nil
	}
	for _, path := range paths {
		delete(objects, path)
	}
	return nil
}

func (m *MemoryStore) SignedURL(ctx context.Context, bucket, path string, ttl time.Duration) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.buckets[bucket][path]; !ok {
		return "", ErrObjectNotFound
	}
	return fmt.Sprintf("memory://%s/%s?expires=%d", bucket, path, time.Now().Add(ttl).Unix()), nil
}

// Count reports how many blobs a bucket holds; test helper.
func (m *MemoryStore) Count(bucket string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.buckets[bucket])
}

// Exists reports whether a blob is present; test helper.
func (m *MemoryStore) Exists(bucket, path string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.buckets[bucket][path]
	return ok
}
