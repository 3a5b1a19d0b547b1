// Package storage is the key/value store behind client-local state such as
// the cart and the customer session.
package storage

import (
	"errors"
	"sync"
)

var ErrInvalidKey = errors.New("storage: invalid key")

// Store holds JSON documents by key. A subscriber receives the new value
// after every Set, and nil after Delete.
type Store interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Delete(key string) error
	Subscribe(key string, fn func(value []byte)) (unsubscribe func())
}

type subscribers struct {
	mu     sync.Mutex
	nextID int
	byKey  map[string]map[int]func([]byte)
}

func (s *subscribers) add(key string, fn func([]byte)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.byKey == nil {
		s.byKey = make(map[string]map[int]func([]byte))
	}
	if s.byKey[key] == nil {
		s.byKey[key] = make(map[int]func([]byte))
	}

	id := s.nextID
	s.nextID++
	s.byKey[key][id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.byKey[key], id)
	}
}

func (s *subscribers) notify(key string, value []byte) {
	s.mu.Lock()
	fns := make([]func([]byte), 0, len(s.byKey[key]))
	for _, fn := range s.byKey[key] {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(value)
	}
}

func copyBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
