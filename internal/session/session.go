// Package session keeps the verified customer's session in client-local
// storage.
package session

import (
	"encoding/json"
	"time"

	"belleza-be/internal/logger"
	"belleza-be/internal/storage"

	"go.uber.org/zap"
)

const (
	StorageKey = "belleza-auth"
	DefaultTTL = time.Hour
)

// Session is stored as JSON; ExpiresAt is epoch milliseconds.
type Session struct {
	CustomerID string  `json:"customerId"`
	Phone      string  `json:"phone"`
	Name       *string `json:"name,omitempty"`
	Email      *string `json:"email,omitempty"`
	Token      string  `json:"token,omitempty"`
	ExpiresAt  int64   `json:"expiresAt"`
}

type Manager struct {
	store storage.Store
	ttl   time.Duration
	now   func() time.Time
}

func NewManager(s storage.Store, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{store: s, ttl: ttl, now: time.Now}
}

// Set stores s with a fresh expiry; any ExpiresAt on s is overwritten.
func (m *Manager) Set(s Session) (Session, error) {
	s.ExpiresAt = m.now().Add(m.ttl).UnixMilli()

	b, err := json.Marshal(s)
	if err != nil {
		return s, err
	}
	return s, m.store.Set(StorageKey, b)
}

// Get returns the live session or nil. Expired and unreadable sessions are
// removed.
func (m *Manager) Get() (*Session, error) {
	raw, ok, err := m.store.Get(StorageKey)
	if err != nil || !ok {
		return nil, err
	}

	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		logger.L().Warn("discarding unreadable session", zap.Error(err))
		return nil, m.store.Delete(StorageKey)
	}

	if s.ExpiresAt < m.now().UnixMilli() {
		return nil, m.store.Delete(StorageKey)
	}
	return &s, nil
}

func (m *Manager) Clear() error {
	return m.store.Delete(StorageKey)
}

func (m *Manager) IsAuthenticated() bool {
	s, err := m.Get()
	return err == nil && s != nil
}
