// Package pipeline связывает распознавание игровых событий с журналом очков:
// классификация → разбор → разрешение игроков → коэффициенты → атомарный
// коммит с отпечатком сообщения.
// models.go описывает входное сообщение и результат обработки.
package pipeline

import (
	"github.com/shopspring/decimal"

	"rolevka.ru/points-bot/internal/games"
	"rolevka.ru/points-bot/internal/ledger"
)

// RawMessage — сырое сообщение от транспортного слоя.
type RawMessage struct {
	ChatID          int64
	MessageID       int
	SenderID        int64
	SenderUsername  string
	Text            string
	ReplyToUserID   int64
	ReplyToUsername string
}

// Status — итог обработки одного сообщения.
type Status string

const (
	// StatusIgnored — не игровое событие, молча пропускаем.
	StatusIgnored Status = "ignored"
	// StatusApplied — событие применено, балансы обновлены.
	StatusApplied Status = "applied"
	// StatusAlreadyApplied — повторная доставка, применено раньше. Успех.
	StatusAlreadyApplied Status = "already_applied"
	// StatusRejected — событие распознано, но данные не разобрались.
	StatusRejected Status = "rejected"
	// StatusFailed — хранилище недоступно после всех повторов
	// или нарушена целостность данных.
	StatusFailed Status = "failed"
)

// Result — структурированный итог для транспортного слоя.
// Пайплайн никогда не форматирует текст для пользователя.
type Result struct {
	Status   Status
	Category games.Category
	// Entries — применённые записи (для StatusApplied).
	Entries []ledger.Entry
	// NewBalances — балансы затронутых игроков после применения.
	NewBalances map[int64]decimal.Decimal
	// Err — причина для StatusRejected/StatusFailed.
	Err error
}
