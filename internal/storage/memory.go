package storage

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/soumyacodes007/social-media-backend/internal/metrics"
)

// MemoryStore keeps blobs in process memory. It backs local runs without
// S3 credentials and tests.
type MemoryStore struct {
	mu      sync.Mutex
	baseURL string
	objects map[string][]byte
	deleted []string
	// Err, when set, fails every call
	Err error
}

// NewMemoryStore creates an empty in-memory store serving URLs under baseURL
func NewMemoryStore(baseURL string) *MemoryStore {
	if baseURL == "" {
		baseURL = "memory://blobs"
	}
	return &MemoryStore{baseURL: strings.TrimSuffix(baseURL, "/"), objects: make(map[string][]byte)}
}

// Upload stores a copy of data
func (m *MemoryStore) Upload(_ context.Context, data []byte, folder, filename string) (*UploadResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		metrics.RecordBlobUpload(folder, len(data), m.Err)
		return nil, m.Err
	}
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}

	detected := mimetype.Detect(data)
	key := objectKey(folder, filename, detected, time.Now().UTC())
	m.objects[key] = append([]byte(nil), data...)
	metrics.RecordBlobUpload(folder, len(data), nil)

	return &UploadResult{
		Key:         key,
		URL:         fmt.Sprintf("%s/%s", m.baseURL, key),
		ContentType: detected.String(),
		Size:        int64(len(data)),
	}, nil
}

// Delete removes the object and records its key
func (m *MemoryStore) Delete(_ context.Context, keyOrURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	key := keyFromURL(m.baseURL, keyOrURL)
	delete(m.objects, key)
	m.deleted = append(m.deleted, key)
	return nil
}

// Get returns a stored object
func (m *MemoryStore) Get(keyOrURL string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[keyFromURL(m.baseURL, keyOrURL)]
	return data, ok
}

// Deleted returns the keys passed to Delete, in order
func (m *MemoryStore) Deleted() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deleted...)
}

// Len returns the number of stored objects
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

var _ BlobStore = (*MemoryStore)(nil)
