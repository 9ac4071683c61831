// Package testutil holds in-memory stand-ins shared by package tests.
package testutil

import (
	"context"
	"os"
	"sync"
)

// MemoryObjectStore keeps uploaded objects in memory. FailOn, when set, is
// consulted before every PutFile and can inject a transfer failure.
type MemoryObjectStore struct {
	mu sync.Mutex

	Bucket        string
	BucketCreated int
	Objects       map[string][]byte
	ContentTypes  map[string]string
	PutCalls      []string

	FailOn func(key, localPath string) error
}

func NewMemoryObjectStore(bucket string) *MemoryObjectStore {
	return &MemoryObjectStore{
		Bucket:       bucket,
		Objects:      make(map[string][]byte),
		ContentTypes: make(map[string]string),
	}
}

func (m *MemoryObjectStore) EnsureBucket(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.BucketCreated == 0 {
		m.BucketCreated = 1
	}
	return nil
}

func (m *MemoryObjectStore) PutFile(_ context.Context, key, localPath, contentType string) (int64, error) {
	m.mu.Lock()
	m.PutCalls = append(m.PutCalls, localPath)
	failOn := m.FailOn
	m.mu.Unlock()

	if failOn != nil {
		if err := failOn(key, localPath); err != nil {
			return 0, err
		}
	}

	data, err := os.ReadFile(localPath)
	if err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Objects[key] = data
	m.ContentTypes[key] = contentType
	return int64(len(data)), nil
}

func (m *MemoryObjectStore) Location() string {
	return m.Bucket
}

func (m *MemoryObjectStore) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.Objects))
	for key := range m.Objects {
		keys = append(keys, key)
	}
	return keys
}
