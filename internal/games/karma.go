// Package games — karma.go распознаёт «спасибо» в ответ на чужое сообщение.
package games

import (
	"strings"

	"github.com/shopspring/decimal"
)

// karmaDelta — сырая дельта кармы. Всегда ровно +1, независимо от текста:
// «спасибо» и «спасибо!!!» стоят одинаково.
var karmaDelta = decimal.NewFromInt(1)

// IsThanks проверяет, является ли текст благодарностью.
// Регистр не важен. Пунктуация в конце допускается.
func IsThanks(text string) bool {
	cleaned := strings.ToLower(strings.TrimSpace(text))
	cleaned = strings.TrimRight(cleaned, "!.,;:)")
	return cleaned == "спасибо" || cleaned == "благодарю"
}

func matchKarma(m Message) bool {
	// Карма работает только во флуд-чате и только в ответ на чужое сообщение
	return m.Game == "" && m.IsReply && IsThanks(m.Text)
}

func parseKarma(m Message) ([]Event, error) {
	if !m.IsReply || (m.ReplyTo.UserID == 0 && m.ReplyTo.Username == "") {
		return nil, &ParseError{Category: CategoryKarma, Reason: "нет сообщения, на которое отвечают"}
	}
	if m.ReplyTo.UserID != 0 && m.ReplyTo.UserID == m.Sender.UserID {
		return nil, &ParseError{Category: CategoryKarma, Reason: "нельзя благодарить самого себя"}
	}
	return []Event{{
		Game:     "karma",
		Kind:     KindKarma,
		Player:   m.ReplyTo,
		RawDelta: karmaDelta,
		Note:     "Благодарность от " + m.Sender.String(),
	}}, nil
}
