// Package ledger — store.go описывает контракт хранилища журнала.
package ledger

import (
	"context"

	"github.com/shopspring/decimal"
)

// Store — хранилище журнала и балансов.
//
// Commit обязан быть атомарным: либо применяется вся группа записей и
// обновляются балансы всех затронутых участников, либо не меняется ничего.
// Повтор отпечатка — не ошибка, а StatusAlreadyApplied без побочных эффектов.
// Повтор отпечатка с другой группой записей — ErrDataIntegrity.
type Store interface {
	Commit(ctx context.Context, fingerprint string, entries []Entry) (*CommitResult, error)
	Balance(ctx context.Context, userID int64) (decimal.Decimal, error)
	History(ctx context.Context, userID int64, limit int) ([]Entry, error)
	// RecomputeBalance пересчитывает баланс суммой записей журнала.
	// Нужен для сверки: кешированный баланс обязан совпадать с пересчётом.
	RecomputeBalance(ctx context.Context, userID int64) (decimal.Decimal, error)
}
