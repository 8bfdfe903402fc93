package kv

import "sync"

var _ Store = (*Memory)(nil)

// Memory is an in-process Store. It backs tests and the degraded mode the
// engine falls into when the durable store cannot be opened: state survives
// for the life of the process only.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte

	// failSet, when non-nil, makes Set/Delete return the given error.
	// Test hook for exercising storage-failure paths.
	failSet error
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Get(key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *Memory) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failSet != nil {
		return storageErr("set", key, m.failSet)
	}
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failSet != nil {
		return storageErr("delete", key, m.failSet)
	}
	delete(m.data, key)
	return nil
}

func (m *Memory) Close() error { return nil }

// FailWrites makes all subsequent writes fail with err (nil restores normal
// operation).
func (m *Memory) FailWrites(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failSet = err
}
