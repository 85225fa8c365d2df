// Package ledger — service.go содержит сервисный слой журнала.
// Сервис добавляет к хранилищу логирование и удобные методы для
// обработчиков (баланс, история, сверка).
package ledger

import (
	"context"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// Service — фасад журнала для пайплайна, админки и магазина.
type Service struct {
	store Store
}

// NewService создаёт сервис журнала.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Commit применяет группу записей с одним отпечатком.
// Повтор отпечатка — успешный no-op (StatusAlreadyApplied).
func (s *Service) Commit(ctx context.Context, fingerprint string, entries []Entry) (*CommitResult, error) {
	res, err := s.store.Commit(ctx, fingerprint, entries)
	if err != nil {
		return nil, err
	}

	if res.Status == StatusAlreadyApplied {
		log.WithField("fingerprint", fingerprint).Debug("Повторная доставка, группа уже применена")
		return res, nil
	}

	log.WithFields(log.Fields{
		"fingerprint": fingerprint,
		"entries":     len(entries),
		"players":     len(res.NewBalances),
	}).Info("Группа записей применена")
	return res, nil
}

// GetBalance возвращает текущий баланс участника.
func (s *Service) GetBalance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	return s.store.Balance(ctx, userID)
}

// GetHistory возвращает последние записи участника, новые первыми.
func (s *Service) GetHistory(ctx context.Context, userID int64, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.store.History(ctx, userID, limit)
}

// Reconcile сравнивает кешированный баланс с пересчётом по журналу.
// Возвращает оба значения; расхождение — повод для тревоги в логах.
func (s *Service) Reconcile(ctx context.Context, userID int64) (cached, recomputed decimal.Decimal, err error) {
	cached, err = s.store.Balance(ctx, userID)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	recomputed, err = s.store.RecomputeBalance(ctx, userID)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	if !cached.Equal(recomputed) {
		log.WithFields(log.Fields{
			"user_id":    userID,
			"cached":     cached.String(),
			"recomputed": recomputed.String(),
		}).Error("Расхождение баланса с журналом")
	}
	return cached, recomputed, nil
}
