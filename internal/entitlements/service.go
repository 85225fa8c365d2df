// Package entitlements — service.go содержит бизнес-логику грантов.
package entitlements

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// Service управляет грантами участников.
type Service struct {
	store Store
}

// NewService создаёт сервис грантов.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Grant выдаёт участнику грант на указанный срок.
func (s *Service) Grant(ctx context.Context, userID int64, kind string, duration time.Duration) error {
	expiresAt := time.Now().Add(duration)
	if err := s.store.Upsert(ctx, userID, kind, expiresAt); err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"user_id":    userID,
		"kind":       kind,
		"expires_at": expiresAt.Format(time.RFC3339),
	}).Info("Грант выдан")
	return nil
}

// Has проверяет, действует ли у участника грант данного вида.
func (s *Service) Has(ctx context.Context, userID int64, kind string) (bool, error) {
	return s.store.HasActive(ctx, userID, kind, time.Now())
}

// List возвращает действующие гранты участника.
func (s *Service) List(ctx context.Context, userID int64) ([]Grant, error) {
	return s.store.ActiveGrants(ctx, userID, time.Now())
}

// ExpireDue отзывает просроченные гранты. Вызывается фоновым планировщиком
// раз в цикл; сбой одного цикла не фатален — следующий тик повторит скан.
func (s *Service) ExpireDue(ctx context.Context, now time.Time) (int, error) {
	revoked, err := s.store.ExpireDue(ctx, now)
	if err != nil {
		return 0, err
	}
	if revoked > 0 {
		log.WithField("revoked", revoked).Info("Просроченные гранты отозваны")
	}
	return revoked, nil
}
