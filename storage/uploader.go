package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
)

type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	GetPublicURL(key string) string
}

// MemoryUploader keeps uploaded objects in memory. The memory store driver
// archives into it when no bucket is configured; tests use it as well.
type MemoryUploader struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func NewMemoryUploader() *MemoryUploader {
	return &MemoryUploader{
		objects: make(map[string][]byte),
		types:   make(map[string]string),
	}
}

func (u *MemoryUploader) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return nil, fmt.Errorf("failed to read object body (key: %s): %w", key, err)
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.objects[key] = buf.Bytes()
	u.types[key] = contentType
	return &UploadResult{Key: key, Location: u.GetPublicURL(key)}, nil
}

func (u *MemoryUploader) GetPublicURL(key string) string {
	return "memory://" + key
}

// Object returns a stored object and its content type.
func (u *MemoryUploader) Object(key string) ([]byte, string, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	body, ok := u.objects[key]
	return body, u.types[key], ok
}

// Keys lists stored object keys in no particular order.
func (u *MemoryUploader) Keys() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	keys := make([]string, 0, len(u.objects))
	for k := range u.objects {
		keys = append(keys, k)
	}
	return keys
}

// NewArchiveUploader picks where final standings go: R2 when configured,
// otherwise process memory if memoryFallback is set. It returns nil when
// archiving stays off.
func NewArchiveUploader(ctx context.Context, r2 CloudflareR2UploaderConfig, memoryFallback bool) (FileUploader, error) {
	if r2.Enabled() {
		return NewCloudflareR2Uploader(ctx, r2)
	}
	if memoryFallback {
		return NewMemoryUploader(), nil
	}
	return nil, nil
}
