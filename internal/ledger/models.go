// Package ledger реализует журнал операций с очками.
// Журнал — единственный источник правды о балансах: записи только
// добавляются, баланс каждого участника равен сумме его записей.
// models.go описывает запись журнала и результат коммита.
package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// EntryType — тип записи журнала.
type EntryType string

const (
	TypeAdd        EntryType = "add"         // начисление админом
	TypeRemove     EntryType = "remove"      // списание админом
	TypeBuy        EntryType = "buy"         // покупка в магазине
	TypeGameCredit EntryType = "game-credit" // начисление за игровое событие
)

// Entry — одна запись журнала. Сумма подписана и хранится уже с учётом
// коэффициента игры; запись никогда не изменяется и не удаляется.
type Entry struct {
	ID          int64
	UserID      int64
	Amount      decimal.Decimal
	Type        EntryType
	ActorID     *int64 // админ или nil для системных записей
	Fingerprint string // отпечаток исходного сообщения (общий для группы записей)
	Description string
	CreatedAt   time.Time
}

// CommitStatus — итог коммита группы записей.
type CommitStatus string

const (
	// StatusApplied — группа применена, балансы обновлены.
	StatusApplied CommitStatus = "applied"
	// StatusAlreadyApplied — этот отпечаток уже применяли раньше.
	// Это успешный исход, а не ошибка: повторная доставка сообщения безопасна.
	StatusAlreadyApplied CommitStatus = "already_applied"
)

// CommitResult — результат атомарного коммита.
type CommitResult struct {
	Status CommitStatus
	// NewBalances — балансы затронутых участников после применения.
	// Для StatusAlreadyApplied пуст: никаких побочных эффектов не было.
	NewBalances map[int64]decimal.Decimal
}

// Ошибки журнала
var (
	// ErrEmptyBatch — коммит без записей не имеет смысла
	ErrEmptyBatch = errors.New("пустая группа записей")
	// ErrNoFingerprint — коммит без отпечатка нарушил бы идемпотентность
	ErrNoFingerprint = errors.New("не задан отпечаток исходного сообщения")
	// ErrDataIntegrity — отпечаток уже применён с другим набором записей.
	// Это баг выше по пайплайну, его нельзя маскировать под AlreadyApplied.
	ErrDataIntegrity = errors.New("отпечаток повторно использован для другого события")
)

// BatchChecksum вычисляет контрольную сумму группы записей.
// Сумма не зависит от порядка записей и позволяет отличить честный повтор
// сообщения от повторного использования отпечатка другим событием.
func BatchChecksum(entries []Entry) string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("%d|%s|%s", e.UserID, e.Amount.String(), e.Type))
	}
	sort.Strings(lines)

	h := sha256.Sum256([]byte(strings.Join(lines, "\n")))
	return hex.EncodeToString(h[:])
}

// validateBatch проверяет группу записей до любых побочных эффектов.
func validateBatch(fingerprint string, entries []Entry) error {
	if fingerprint == "" {
		return ErrNoFingerprint
	}
	if len(entries) == 0 {
		return ErrEmptyBatch
	}
	for i, e := range entries {
		if e.UserID == 0 {
			return fmt.Errorf("запись %d: не задан участник", i)
		}
		switch e.Type {
		case TypeAdd, TypeRemove, TypeBuy, TypeGameCredit:
		default:
			return fmt.Errorf("запись %d: неизвестный тип %q", i, e.Type)
		}
	}
	return nil
}
