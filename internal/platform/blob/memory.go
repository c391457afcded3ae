package blob

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"sync"
)

// MemoryStore keeps uploaded blobs in memory. Used in tests.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

// Upload stores the content and returns a synthetic URL.
func (s *MemoryStore) Upload(ctx context.Context, content io.Reader, filename, folder string) (Object, error) {
	data, err := io.ReadAll(content)
	if err != nil {
		return Object{}, err
	}
	key := path.Join(folder, filename)

	s.mu.Lock()
	s.objects[key] = data
	s.mu.Unlock()

	return Object{
		URL:    fmt.Sprintf("mem://%s", key),
		Format: strings.TrimPrefix(filepath.Ext(filename), "."),
	}, nil
}

// Get returns stored content for assertions in tests.
func (s *MemoryStore) Get(folder, filename string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[path.Join(folder, filename)]
	return data, ok
}
