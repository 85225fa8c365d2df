// Package ledger — memory.go реализует хранилище журнала в памяти.
// Используется в тестах и для локального запуска без PostgreSQL.
// Семантика идентична PostgresStore: атомарный коммит, сторож отпечатков,
// балансы как производная от журнала.
package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// MemoryStore — потокобезопасное хранилище журнала в памяти.
type MemoryStore struct {
	mu        sync.Mutex
	entries   []Entry
	balances  map[int64]decimal.Decimal
	processed map[string]string // отпечаток → контрольная сумма группы
	nextID    int64

	// failAfterEntries — тестовый крючок: прервать коммит после N записей,
	// чтобы проверить, что частичное применение не наблюдается. 0 — выключен.
	failAfterEntries int
}

// NewMemoryStore создаёт пустое хранилище.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		balances:  make(map[int64]decimal.Decimal),
		processed: make(map[string]string),
		nextID:    1,
	}
}

// Commit применяет группу записей атомарно: вся работа идёт на копиях,
// состояние хранилища подменяется только после успеха всей группы.
func (s *MemoryStore) Commit(ctx context.Context, fingerprint string, entries []Entry) (*CommitResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateBatch(fingerprint, entries); err != nil {
		return nil, err
	}
	checksum := BatchChecksum(entries)

	s.mu.Lock()
	defer s.mu.Unlock()

	if stored, ok := s.processed[fingerprint]; ok {
		if stored != checksum {
			return nil, fmt.Errorf("отпечаток %s: %w", fingerprint, ErrDataIntegrity)
		}
		return &CommitResult{Status: StatusAlreadyApplied}, nil
	}

	// Стейджинг: записи и дельты собираются отдельно от текущего состояния
	staged := make([]Entry, 0, len(entries))
	deltas := make(map[int64]decimal.Decimal)
	now := time.Now()
	for i, e := range entries {
		if s.failAfterEntries > 0 && i >= s.failAfterEntries {
			return nil, fmt.Errorf("хранилище недоступно (инъекция сбоя после %d записей)", s.failAfterEntries)
		}
		e.ID = s.nextID + int64(i)
		e.Fingerprint = fingerprint
		e.CreatedAt = now
		staged = append(staged, e)
		deltas[e.UserID] = deltas[e.UserID].Add(e.Amount)
	}

	// Вся группа готова — применяем
	s.nextID += int64(len(staged))
	s.entries = append(s.entries, staged...)
	s.processed[fingerprint] = checksum

	newBalances := make(map[int64]decimal.Decimal, len(deltas))
	for userID, delta := range deltas {
		s.balances[userID] = s.balances[userID].Add(delta)
		newBalances[userID] = s.balances[userID]
	}
	return &CommitResult{Status: StatusApplied, NewBalances: newBalances}, nil
}

// Balance возвращает текущий баланс участника (ноль, если записей не было).
func (s *MemoryStore) Balance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balances[userID], nil
}

// History возвращает последние записи участника, новые первыми.
func (s *MemoryStore) History(ctx context.Context, userID int64, limit int) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Entry
	for i := len(s.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if s.entries[i].UserID == userID {
			out = append(out, s.entries[i])
		}
	}
	return out, nil
}

// RecomputeBalance пересчитывает баланс суммой записей журнала.
func (s *MemoryStore) RecomputeBalance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sum := decimal.Zero
	for _, e := range s.entries {
		if e.UserID == userID {
			sum = sum.Add(e.Amount)
		}
	}
	return sum, nil
}
