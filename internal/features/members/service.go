// Package members — service.go содержит бизнес-логику управления участниками.
// Сервис реализует разрешение @username в ID для пайплайна.
package members

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"rolevka.ru/points-bot/internal/common"
)

// Service управляет участниками чата.
type Service struct {
	repo *Repository
}

// NewService создаёт новый сервис участников.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// EnsureMember регистрирует участника или обновляет его данные.
// Вызывается на каждое входящее сообщение: имя и username могли измениться.
func (s *Service) EnsureMember(ctx context.Context, userID int64, username, firstName, lastName string) error {
	member := &Member{
		UserID:    userID,
		Username:  username,
		FirstName: firstName,
		LastName:  lastName,
	}
	if err := s.repo.Create(ctx, member); err != nil {
		return fmt.Errorf("ошибка регистрации участника: %w", err)
	}
	return nil
}

// IsMember проверяет, зарегистрирован ли пользователь.
func (s *Service) IsMember(ctx context.Context, userID int64) (bool, error) {
	return s.repo.Exists(ctx, userID)
}

// Get возвращает участника по Telegram ID.
func (s *Service) Get(ctx context.Context, userID int64) (*Member, error) {
	return s.repo.GetByUserID(ctx, userID)
}

// ResolveUsername превращает @username в Telegram ID.
// Реализует контракт пайплайна: игровые боты называют победителей по имени.
func (s *Service) ResolveUsername(ctx context.Context, username string) (int64, error) {
	m, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		log.WithField("username", username).Debug("Участник не найден при разрешении имени")
		return 0, common.ErrUnknownPlayer
	}
	if m.IsBanned {
		return 0, common.ErrUnknownPlayer
	}
	return m.UserID, nil
}

// SetAdmin выставляет участнику флаг администратора.
func (s *Service) SetAdmin(ctx context.Context, userID int64, isAdmin bool) error {
	return s.repo.SetAdmin(ctx, userID, isAdmin)
}
