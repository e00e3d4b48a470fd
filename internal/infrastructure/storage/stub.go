package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"sync"
	"time"
)

// StubObjectStorage keeps objects in memory. It is used when no bucket is
// configured and by tests; download URLs point at BaseURL and are not served.
type StubObjectStorage struct {
	BaseURL    string
	Expiration time.Duration

	mu      sync.RWMutex
	objects map[string]stubObject
}

type stubObject struct {
	data        []byte
	contentType string
}

func NewStubObjectStorage() *StubObjectStorage {
	return &StubObjectStorage{
		BaseURL:    "http://localhost:8080/files",
		Expiration: 15 * time.Minute,
		objects:    make(map[string]stubObject),
	}
}

var _ ObjectStorage = (*StubObjectStorage)(nil)

func (s *StubObjectStorage) Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	if key == "" {
		return "", errKeyRequired
	}
	data, err := io.ReadAll(io.LimitReader(r, size+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) != size {
		return "", fmt.Errorf("upload size mismatch: declared %d, read %d", size, len(data))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = stubObject{data: data, contentType: contentType}
	return key, nil
}

func (s *StubObjectStorage) GenerateDownloadURL(ctx context.Context, key string) (string, time.Time, error) {
	if key == "" {
		return "", time.Time{}, errKeyRequired
	}
	expiresAt := time.Now().Add(s.Expiration)
	return s.BaseURL + "/" + key + "?expires=" + url.QueryEscape(expiresAt.UTC().Format(time.RFC3339)), expiresAt, nil
}

func (s *StubObjectStorage) DeleteObject(ctx context.Context, key string) error {
	if key == "" {
		return errKeyRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *StubObjectStorage) ObjectExists(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, errKeyRequired
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[key]
	return ok, nil
}

func (s *StubObjectStorage) EnsureBucket(ctx context.Context) error {
	return nil
}

// Read returns a stored object's bytes and content type
func (s *StubObjectStorage) Read(key string) ([]byte, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.objects[key]
	if !ok {
		return nil, "", false
	}
	return bytes.Clone(o.data), o.contentType, true
}
