// Package shop — service.go содержит логику покупки.
package shop

import (
	"context"

	log "github.com/sirupsen/logrus"

	"rolevka.ru/points-bot/internal/common"
	"rolevka.ru/points-bot/internal/entitlements"
	"rolevka.ru/points-bot/internal/ledger"
)

// Service проводит покупки через журнал и сервис грантов.
type Service struct {
	ledger       *ledger.Service
	entitlements *entitlements.Service
}

// NewService создаёт сервис магазина.
func NewService(ledgerSvc *ledger.Service, entSvc *entitlements.Service) *Service {
	return &Service{ledger: ledgerSvc, entitlements: entSvc}
}

// Buy покупает товар: списание через атомарный коммит журнала, затем грант.
// fingerprint — отпечаток команды покупателя, повтор команды не спишет
// очки дважды (и не продлит грант второй раз).
func (s *Service) Buy(ctx context.Context, fingerprint string, userID int64, code string) (Item, error) {
	item, ok := FindItem(code)
	if !ok {
		return Item{}, common.ErrItemNotFound
	}

	owned, err := s.entitlements.Has(ctx, userID, item.GrantKind)
	if err != nil {
		return Item{}, err
	}
	if owned {
		return Item{}, common.ErrAlreadyOwned
	}

	balance, err := s.ledger.GetBalance(ctx, userID)
	if err != nil {
		return Item{}, err
	}
	if balance.LessThan(item.Price) {
		return Item{}, common.ErrInsufficientBalance
	}

	entry := ledger.Entry{
		UserID:      userID,
		Amount:      item.Price.Neg(),
		Type:        ledger.TypeBuy,
		Description: "Покупка: " + item.Title,
	}
	res, err := s.ledger.Commit(ctx, fingerprint, []ledger.Entry{entry})
	if err != nil {
		return Item{}, err
	}
	if res.Status == ledger.StatusAlreadyApplied {
		// Повторная доставка команды: списание уже было, грант уже выдан
		log.WithField("fingerprint", fingerprint).Debug("Повторная покупка, пропускаем")
		return item, nil
	}

	if err := s.entitlements.Grant(ctx, userID, item.GrantKind, item.Duration); err != nil {
		// Списание прошло, грант не выдался: не прячем, пусть админ разберётся
		log.WithError(err).WithFields(log.Fields{
			"user_id": userID,
			"item":    item.Code,
		}).Error("Списание прошло, но грант не выдан")
		return Item{}, err
	}
	return item, nil
}
