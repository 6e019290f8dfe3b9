package blob

import (
	"bytes"
	"context"
	"io"
	"sync"
)

// Memory is an in-memory Store used by tests and local development.
type Memory struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{blobs: make(map[string][]byte)}
}

func (m *Memory) Put(ctx context.Context, key string, r io.Reader) (int64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	m.mu.Lock()
	m.blobs[key] = data
	m.mu.Unlock()
	return int64(len(data)), nil
}

func (m *Memory) Get(ctx context.Context, key string, rng *ByteRange) (io.ReadCloser, error) {
	m.mu.RLock()
	data, ok := m.blobs[key]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotExist
	}
	if rng != nil {
		start := rng.Start
		end := rng.End
		if start > int64(len(data)) {
			start = int64(len(data))
		}
		if end > int64(len(data)) {
			end = int64(len(data))
		}
		data = data[start:end]
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *Memory) Head(ctx context.Context, key string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.blobs[key]
	if !ok {
		return 0, ErrNotExist
	}
	return int64(len(data)), nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.blobs, key)
	m.mu.Unlock()
	return nil
}
