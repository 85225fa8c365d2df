// Package entitlements — memory.go реализует хранилище грантов в памяти.
// Используется в тестах и для локального запуска без PostgreSQL.
package entitlements

import (
	"context"
	"sync"
	"time"
)

type grantKey struct {
	UserID int64
	Kind   string
}

// MemoryStore — потокобезопасное хранилище грантов в памяти.
type MemoryStore struct {
	mu     sync.Mutex
	grants map[grantKey]*Grant
	nextID int64
}

// NewMemoryStore создаёт пустое хранилище.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{grants: make(map[grantKey]*Grant), nextID: 1}
}

// Upsert создаёт грант или продлевает существующий.
func (s *MemoryStore) Upsert(ctx context.Context, userID int64, kind string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := grantKey{UserID: userID, Kind: kind}
	if g, ok := s.grants[key]; ok {
		g.ExpiresAt = expiresAt
		g.Active = true
		g.RevokedAt = nil
		return nil
	}
	s.grants[key] = &Grant{
		ID:        s.nextID,
		UserID:    userID,
		Kind:      kind,
		ExpiresAt: expiresAt,
		Active:    true,
		CreatedAt: time.Now(),
	}
	s.nextID++
	return nil
}

// HasActive проверяет, действует ли грант прямо сейчас.
func (s *MemoryStore) HasActive(ctx context.Context, userID int64, kind string, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.grants[grantKey{UserID: userID, Kind: kind}]
	return ok && g.Active && g.ExpiresAt.After(now), nil
}

// ActiveGrants возвращает действующие гранты участника.
func (s *MemoryStore) ActiveGrants(ctx context.Context, userID int64, now time.Time) ([]Grant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Grant
	for _, g := range s.grants {
		if g.UserID == userID && g.Active && g.ExpiresAt.After(now) {
			out = append(out, *g)
		}
	}
	return out, nil
}

// ExpireDue отзывает все просроченные гранты. Отзыв терминален:
// повторный вызов не трогает уже отозванные гранты.
func (s *MemoryStore) ExpireDue(ctx context.Context, now time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	revoked := 0
	for _, g := range s.grants {
		if g.Active && !g.ExpiresAt.After(now) {
			g.Active = false
			ts := now
			g.RevokedAt = &ts
			revoked++
		}
	}
	return revoked, nil
}
