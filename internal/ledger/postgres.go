// Package ledger — postgres.go реализует хранилище журнала поверх PostgreSQL.
// Все денежные операции выполняются в одной транзакции БД: проверка отпечатка,
// вставка записей и обновление балансов либо проходят целиком, либо никак.
package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PostgresStore хранит журнал в таблицах ledger_entries, balances
// и processed_messages (сторож идемпотентности).
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore создаёт хранилище журнала.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// Commit применяет группу записей с одним отпечатком.
// Дисциплина: проверить отпечаток → вставить записи → обновить балансы,
// всё внутри одной транзакции. Повторный отпечаток даёт StatusAlreadyApplied
// с нулевыми побочными эффектами.
func (s *PostgresStore) Commit(ctx context.Context, fingerprint string, entries []Entry) (*CommitResult, error) {
	if err := validateBatch(fingerprint, entries); err != nil {
		return nil, err
	}
	checksum := BatchChecksum(entries)

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	// Сторож идемпотентности: отпечаток уже применялся?
	var stored string
	err = tx.QueryRow(ctx,
		`SELECT checksum FROM processed_messages WHERE fingerprint = $1`, fingerprint,
	).Scan(&stored)
	switch {
	case err == nil:
		if stored != checksum {
			return nil, fmt.Errorf("отпечаток %s: %w", fingerprint, ErrDataIntegrity)
		}
		return &CommitResult{Status: StatusAlreadyApplied}, nil
	case !errors.Is(err, pgx.ErrNoRows):
		return nil, fmt.Errorf("ошибка проверки отпечатка: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO processed_messages (fingerprint, checksum) VALUES ($1, $2)`,
		fingerprint, checksum,
	)
	if err != nil {
		// Конкурентный коммит того же сообщения успел первым —
		// уникальный индекс сработал, значит группа уже применена.
		if isUniqueViolation(err) {
			return s.resolveDuplicate(ctx, fingerprint, checksum)
		}
		return nil, fmt.Errorf("ошибка записи отпечатка: %w", err)
	}

	// Вставляем записи журнала
	for _, e := range entries {
		_, err = tx.Exec(ctx, `
			INSERT INTO ledger_entries (user_id, amount, entry_type, actor_id, fingerprint, description)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, e.UserID, e.Amount.String(), string(e.Type), e.ActorID, fingerprint, e.Description)
		if err != nil {
			return nil, fmt.Errorf("ошибка вставки записи журнала: %w", err)
		}
	}

	// Обновляем балансы: по одной дельте на участника, в той же транзакции.
	// UPDATE берёт блокировку строки, конкурентные коммиты по одному игроку
	// сериализуются на уровне БД.
	newBalances := make(map[int64]decimal.Decimal)
	for userID, delta := range sumByUser(entries) {
		_, err = tx.Exec(ctx, `
			INSERT INTO balances (user_id, balance) VALUES ($1, 0)
			ON CONFLICT (user_id) DO NOTHING
		`, userID)
		if err != nil {
			return nil, fmt.Errorf("ошибка создания баланса: %w", err)
		}

		var balanceText string
		err = tx.QueryRow(ctx, `
			UPDATE balances
			SET balance = balance + $2::numeric, updated_at = NOW()
			WHERE user_id = $1
			RETURNING balance::text
		`, userID, delta.String()).Scan(&balanceText)
		if err != nil {
			return nil, fmt.Errorf("ошибка обновления баланса: %w", err)
		}

		balance, err := decimal.NewFromString(balanceText)
		if err != nil {
			return nil, fmt.Errorf("некорректный баланс в БД: %w", err)
		}
		newBalances[userID] = balance
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}
	return &CommitResult{Status: StatusApplied, NewBalances: newBalances}, nil
}

// resolveDuplicate разбирает гонку двух коммитов одного сообщения:
// победившая транзакция уже зафиксирована, сверяем контрольную сумму.
func (s *PostgresStore) resolveDuplicate(ctx context.Context, fingerprint, checksum string) (*CommitResult, error) {
	var stored string
	err := s.db.QueryRow(ctx,
		`SELECT checksum FROM processed_messages WHERE fingerprint = $1`, fingerprint,
	).Scan(&stored)
	if err != nil {
		return nil, fmt.Errorf("ошибка сверки отпечатка: %w", err)
	}
	if stored != checksum {
		return nil, fmt.Errorf("отпечаток %s: %w", fingerprint, ErrDataIntegrity)
	}
	return &CommitResult{Status: StatusAlreadyApplied}, nil
}

// Balance возвращает текущий баланс участника.
// Отсутствие строки баланса — это честный ноль, а не ошибка.
func (s *PostgresStore) Balance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	var text string
	err := s.db.QueryRow(ctx,
		`SELECT balance::text FROM balances WHERE user_id = $1`, userID,
	).Scan(&text)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("ошибка получения баланса: %w", err)
	}
	return decimal.NewFromString(text)
}

// History возвращает последние записи журнала участника, новые первыми.
func (s *PostgresStore) History(ctx context.Context, userID int64, limit int) ([]Entry, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, amount::text, entry_type, actor_id, COALESCE(fingerprint, ''), description, created_at
		FROM ledger_entries
		WHERE user_id = $1
		ORDER BY id DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения истории: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var amountText, entryType string
		if err := rows.Scan(&e.ID, &e.UserID, &amountText, &entryType, &e.ActorID, &e.Fingerprint, &e.Description, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования записи: %w", err)
		}
		e.Type = EntryType(entryType)
		if e.Amount, err = decimal.NewFromString(amountText); err != nil {
			return nil, fmt.Errorf("некорректная сумма в БД: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения записей: %w", err)
	}
	return out, nil
}

// RecomputeBalance пересчитывает баланс суммой всех записей журнала.
func (s *PostgresStore) RecomputeBalance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	var text string
	err := s.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0)::text FROM ledger_entries WHERE user_id = $1`, userID,
	).Scan(&text)
	if err != nil {
		return decimal.Zero, fmt.Errorf("ошибка пересчёта баланса: %w", err)
	}
	return decimal.NewFromString(text)
}

// sumByUser суммирует дельты группы по участникам.
func sumByUser(entries []Entry) map[int64]decimal.Decimal {
	sums := make(map[int64]decimal.Decimal)
	for _, e := range entries {
		sums[e.UserID] = sums[e.UserID].Add(e.Amount)
	}
	return sums
}

// isUniqueViolation распознаёт нарушение уникального индекса (код 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
