// Package storagetest provides an in-memory asset store for tests.
package storagetest

import (
	"context"
	"fmt"
	"io"
	"sync"

	"cozyvile/storage"
)

const BaseURL = "https://assets.test"

// Memory fails uploads or removals of the object keys (`<bucket>/<path>`)
// listed in FailUpload / FailRemove.
type Memory struct {
	FailUpload map[string]error
	FailRemove map[string]error

	mutex   sync.Mutex
	objects map[string][]byte
	uploads []string
	removes []string
}

func NewMemory() *Memory {
	return &Memory{
		FailUpload: map[string]error{},
		FailRemove: map[string]error{},
		objects:    map[string][]byte{},
	}
}

func key(bucket, path string) string {
	return bucket + "/" + path
}

func (m *Memory) Upload(ctx context.Context, bucket, path string, body io.Reader, contentType string) (string, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	k := key(bucket, path)
	m.uploads = append(m.uploads, k)
	if err := m.FailUpload[k]; err != nil {
		return "", err
	}
	if _, ok := m.objects[k]; ok {
		return "", fmt.Errorf("object %s already exists", k)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	m.objects[k] = data
	return path, nil
}

func (m *Memory) PublicURL(bucket, path string) string {
	return storage.PublicURL(BaseURL, bucket, path)
}

// Remove attempts every path and reports the first injected failure
func (m *Memory) Remove(ctx context.Context, bucket string, paths []string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	var failed error
	for _, p := range paths {
		k := key(bucket, p)
		m.removes = append(m.removes, k)
		if err := m.FailRemove[k]; err != nil {
			if failed == nil {
				failed = err
			}
			continue
		}
		delete(m.objects, k)
	}
	return failed
}

// Put stores an object directly, bypassing the recorded uploads
func (m *Memory) Put(bucket, path string, data []byte) string {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.objects[key(bucket, path)] = data
	return m.PublicURL(bucket, path)
}

func (m *Memory) Has(bucket, path string) bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	_, ok := m.objects[key(bucket, path)]
	return ok
}

func (m *Memory) Uploads() []string {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return append([]string{}, m.uploads...)
}

func (m *Memory) Removes() []string {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return append([]string{}, m.removes...)
}
