// Package games — anketa.go распознаёт обновление анкеты участника.
// Сообщение с тегом #анкета во флуд-чате даёт фиксированный бонус автору.
package games

import (
	"strings"

	"github.com/shopspring/decimal"
)

// anketaDelta — фиксированная сырая дельта за обновление анкеты.
var anketaDelta = decimal.NewFromInt(5)

func matchAnketa(m Message) bool {
	if m.Game != "" || m.IsReply {
		return false
	}
	first := strings.ToLower(strings.TrimSpace(m.Text))
	return strings.HasPrefix(first, "#анкета")
}

func parseAnketa(m Message) ([]Event, error) {
	if m.Sender.UserID == 0 {
		return nil, &ParseError{Category: CategoryAnketa, Reason: "неизвестен автор анкеты"}
	}
	return []Event{{
		Game:     "anketa",
		Kind:     KindProfileUpdate,
		Player:   m.Sender,
		RawDelta: anketaDelta,
		Note:     "Обновление анкеты",
	}}, nil
}
