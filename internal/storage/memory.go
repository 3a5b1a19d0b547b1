package storage

import "sync"

type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
	subs subscribers
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (m *MemoryStore) Get(key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	return copyBytes(v), ok, nil
}

func (m *MemoryStore) Set(key string, value []byte) error {
	if key == "" {
		return ErrInvalidKey
	}

	m.mu.Lock()
	m.data[key] = copyBytes(value)
	m.mu.Unlock()

	m.subs.notify(key, copyBytes(value))
	return nil
}

func (m *MemoryStore) Delete(key string) error {
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()

	m.subs.notify(key, nil)
	return nil
}

func (m *MemoryStore) Subscribe(key string, fn func(value []byte)) func() {
	return m.subs.add(key, fn)
}
