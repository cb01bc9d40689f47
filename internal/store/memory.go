package store

import (
	"context"
	"sync"
)

// MemoryStore keeps preferences in process memory. It is the default backend
// for a single terminal session and the double used by other packages' tests.
type MemoryStore struct {
	mu       sync.RWMutex
	language string
	recent   []string
	token    string
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Language(ctx context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.language, nil
}

func (m *MemoryStore) SetLanguage(ctx context.Context, lang string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.language = lang
	return nil
}

func (m *MemoryStore) RecentlyViewed(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.recent))
	copy(out, m.recent)
	return out, nil
}

func (m *MemoryStore) PushRecentlyViewed(ctx context.Context, productID string) ([]string, error) {
	if productID == "" {
		return nil, ErrEmptyProductID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recent = pushRecent(m.recent, productID)
	out := make([]string, len(m.recent))
	copy(out, m.recent)
	return out, nil
}

func (m *MemoryStore) AuthToken(ctx context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, nil
}

func (m *MemoryStore) SetAuthToken(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *MemoryStore) ClearAuthToken(ctx context.Context) error {
	return m.SetAuthToken(ctx, "")
}

func (m *MemoryStore) Close() error { return nil }
