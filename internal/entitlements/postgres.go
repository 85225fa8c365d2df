// Package entitlements — postgres.go реализует хранилище грантов в PostgreSQL.
package entitlements

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore работает с таблицей entitlement_grants.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore создаёт хранилище грантов.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// Upsert создаёт грант или продлевает существующий.
// Повторная покупка того же вида сдвигает срок и реактивирует грант.
func (s *PostgresStore) Upsert(ctx context.Context, userID int64, kind string, expiresAt time.Time) error {
	query := `
		INSERT INTO entitlement_grants (user_id, grant_kind, expires_at, active)
		VALUES ($1, $2, $3, TRUE)
		ON CONFLICT (user_id, grant_kind) DO UPDATE
		SET expires_at = EXCLUDED.expires_at,
		    active = TRUE,
		    revoked_at = NULL
	`
	if _, err := s.db.Exec(ctx, query, userID, kind, expiresAt); err != nil {
		return fmt.Errorf("ошибка создания гранта: %w", err)
	}
	return nil
}

// HasActive проверяет, действует ли грант прямо сейчас.
func (s *PostgresStore) HasActive(ctx context.Context, userID int64, kind string, now time.Time) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM entitlement_grants
			WHERE user_id = $1 AND grant_kind = $2 AND active = TRUE AND expires_at > $3
		)
	`
	var exists bool
	if err := s.db.QueryRow(ctx, query, userID, kind, now).Scan(&exists); err != nil {
		return false, fmt.Errorf("ошибка проверки гранта: %w", err)
	}
	return exists, nil
}

// ActiveGrants возвращает действующие гранты участника.
func (s *PostgresStore) ActiveGrants(ctx context.Context, userID int64, now time.Time) ([]Grant, error) {
	query := `
		SELECT id, user_id, grant_kind, expires_at, active, created_at, revoked_at
		FROM entitlement_grants
		WHERE user_id = $1 AND active = TRUE AND expires_at > $2
		ORDER BY expires_at
	`
	rows, err := s.db.Query(ctx, query, userID, now)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса грантов: %w", err)
	}
	defer rows.Close()

	var out []Grant
	for rows.Next() {
		var g Grant
		if err := rows.Scan(&g.ID, &g.UserID, &g.Kind, &g.ExpiresAt, &g.Active, &g.CreatedAt, &g.RevokedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования гранта: %w", err)
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения грантов: %w", err)
	}
	return out, nil
}

// ExpireDue отзывает все просроченные гранты одним UPDATE.
// Один оператор — одна транзакция: либо отозваны все просроченные,
// либо (при сбое) ни один. Индекс по (active, expires_at) делает скан дешёвым.
func (s *PostgresStore) ExpireDue(ctx context.Context, now time.Time) (int, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE entitlement_grants
		SET active = FALSE, revoked_at = $1
		WHERE active = TRUE AND expires_at <= $1
	`, now)
	if err != nil {
		return 0, fmt.Errorf("ошибка отзыва грантов: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
