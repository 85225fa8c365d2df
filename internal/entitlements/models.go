// Package entitlements управляет временными грантами участников
// (например, доступ к стикерпакам, купленным в магазине).
// Жизненный цикл гранта: создан → активен → отозван (терминально).
// models.go описывает грант и контракт хранилища.
package entitlements

import (
	"context"
	"time"
)

// Виды грантов, известные магазину.
const (
	KindStickerPackBasic   = "sticker_pack_basic"
	KindStickerPackPremium = "sticker_pack_premium"
	KindCustomTitle        = "custom_title"
)

// Grant — временное право участника.
type Grant struct {
	ID        int64
	UserID    int64
	Kind      string
	ExpiresAt time.Time
	Active    bool
	CreatedAt time.Time
	RevokedAt *time.Time
}

// Expired сообщает, истёк ли грант к моменту now.
func (g Grant) Expired(now time.Time) bool {
	return !g.ExpiresAt.After(now)
}

// Store — хранилище грантов.
//
// ExpireDue обязан отзывать просроченные гранты в одной транзакции:
// полуотозванных грантов не бывает, отзыв терминален.
type Store interface {
	// Upsert создаёт грант или продлевает существующий (реактивируя его).
	Upsert(ctx context.Context, userID int64, kind string, expiresAt time.Time) error
	// HasActive проверяет, действует ли грант прямо сейчас.
	HasActive(ctx context.Context, userID int64, kind string, now time.Time) (bool, error)
	// ActiveGrants возвращает действующие гранты участника.
	ActiveGrants(ctx context.Context, userID int64, now time.Time) ([]Grant, error)
	// ExpireDue отзывает все гранты с expires_at <= now. Возвращает число отозванных.
	ExpireDue(ctx context.Context, now time.Time) (int, error)
}
