package evidence

import (
	"context"
	"fmt"
	"sync"
)

// Store keeps visual proof of automation runs. Automation adapters write a
// screenshot per publish attempt; the verifier later checks the artifact is
// still there instead of talking to the platform.
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (ref string, err error)
	Exists(ctx context.Context, ref string) (bool, error)
	URL(ref string) string
}

// Memory is an in-process Store for tests and deployments without object
// storage.
type Memory struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{objects: make(map[string][]byte)}
}

func (m *Memory) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return key, nil
}

func (m *Memory) Exists(_ context.Context, ref string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[ref]
	return ok, nil
}

func (m *Memory) URL(ref string) string {
	return fmt.Sprintf("memory://%s", ref)
}

// Drop removes an object. Test helper for simulating lost evidence.
func (m *Memory) Drop(ref string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, ref)
}
