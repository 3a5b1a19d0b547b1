package cart

import (
	"bytes"
	"encoding/json"
	"sync"

	"belleza-be/internal/logger"
	"belleza-be/internal/storage"

	"go.uber.org/zap"
)

// StorageKey is where the cart lives in client-local storage.
const StorageKey = "belleza-cart"

// Store applies cart operations as read-modify-write against a storage.Store.
type Store struct {
	mu    sync.Mutex
	store storage.Store
}

func NewStore(s storage.Store) *Store {
	return &Store{store: s}
}

// decode accepts both the {items, total} envelope and the legacy bare array.
// The second return value reports whether the stored document should be
// rewritten, either because it was legacy or because it needed normalizing.
func decode(raw []byte) (Cart, bool, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []Item
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return Empty(), false, err
		}
		return Normalize(items), true, nil
	}

	var envelope struct {
		Items []Item `json:"items"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return Empty(), false, err
	}
	c := Normalize(envelope.Items)
	return c, len(c.Items) != len(envelope.Items), nil
}

func (s *Store) load() (Cart, error) {
	raw, ok, err := s.store.Get(StorageKey)
	if err != nil {
		return Empty(), err
	}
	if !ok {
		return Empty(), nil
	}

	c, rewrite, err := decode(raw)
	if err != nil {
		logger.L().Warn("discarding unreadable cart", zap.Error(err))
		return Empty(), nil
	}
	if rewrite {
		if err := s.save(c); err != nil {
			return c, err
		}
	}
	return c, nil
}

func (s *Store) save(c Cart) error {
	b, err := json.Marshal(Recalculate(c))
	if err != nil {
		return err
	}
	return s.store.Set(StorageKey, b)
}

func (s *Store) mutate(fn func(Cart) Cart) (Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.load()
	if err != nil {
		return c, err
	}
	c = fn(c)
	return c, s.save(c)
}

// Get reads the cart, upgrading and rewriting a legacy array in place.
func (s *Store) Get() (Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) Add(p Product, qty int) (Cart, error) {
	return s.mutate(func(c Cart) Cart { return Add(c, p, qty) })
}

func (s *Store) Update(productID string, qty int) (Cart, error) {
	return s.mutate(func(c Cart) Cart { return Update(c, productID, qty) })
}

func (s *Store) Remove(productID string) (Cart, error) {
	return s.mutate(func(c Cart) Cart { return Remove(c, productID) })
}

func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(Clear())
}

// Subscribe calls fn with the decoded cart after every write. fn runs while
// the write is in progress and must not call back into the Store.
func (s *Store) Subscribe(fn func(Cart)) func() {
	return s.store.Subscribe(StorageKey, func(raw []byte) {
		if raw == nil {
			fn(Empty())
			return
		}
		c, _, err := decode(raw)
		if err != nil {
			return
		}
		fn(c)
	})
}
