// Package filters содержит проверки доступа для входящих сообщений.
package filters

import (
	"context"

	"github.com/mymmrac/telego"
	log "github.com/sirupsen/logrus"

	"rolevka.ru/points-bot/internal/features/members"
)

// ChatFilter решает, обрабатывать ли сообщение.
// Разрешены: флуд-чат, игровые чаты и личка зарегистрированных участников.
type ChatFilter struct {
	floodChatID   int64
	gameChats     map[int64]string
	memberService *members.Service
}

func NewChatFilter(floodChatID int64, gameChats map[int64]string, memberService *members.Service) *ChatFilter {
	return &ChatFilter{
		floodChatID:   floodChatID,
		gameChats:     gameChats,
		memberService: memberService,
	}
}

// CheckAccess возвращает true, если сообщение нужно обрабатывать.
func (f *ChatFilter) CheckAccess(ctx context.Context, message *telego.Message) bool {
	if message == nil || message.From == nil {
		// Сервисные сообщения каналов и т.п. — пропускаем молча
		return false
	}

	chatID := message.Chat.ID
	userID := message.From.ID

	logger := log.WithFields(log.Fields{
		"component": "ChatFilter",
		"chat_id":   chatID,
		"user_id":   userID,
	})

	// 1) Флуд-чат
	if chatID == f.floodChatID {
		return true
	}

	// 2) Игровые чаты
	if _, ok := f.gameChats[chatID]; ok {
		return true
	}

	// 3) Личка: только для зарегистрированных участников
	if message.Chat.Type == telego.ChatTypePrivate {
		isMember, err := f.memberService.IsMember(ctx, userID)
		if err != nil {
			logger.WithError(err).Error("member check failed (db)")
			return false
		}
		if !isMember {
			logger.Info("deny: private (not a member)")
		}
		return isMember
	}

	// 4) Остальные чаты игнорируем
	logger.Debug("deny: unknown chat")
	return false
}
