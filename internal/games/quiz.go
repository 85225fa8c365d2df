// Package games — quiz.go разбирает начисления бота-викторины.
// Формат: «Правильный ответ! @username получает 2.5 очка».
// Дробные дельты — норма: викторина начисляет половинки за подсказки,
// поэтому точность разбора критична для сходимости баланса.
package games

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var quizRe = regexp.MustCompile(`(?i)Правильный ответ!\s*@([A-Za-z0-9_]{3,32})\s+получает\s+([0-9]+(?:[.,][0-9]+)?)`)

func matchQuizScore(m Message) bool {
	return m.Game == "quiz" && quizRe.MatchString(m.Text)
}

func parseQuizScore(m Message) ([]Event, error) {
	match := quizRe.FindStringSubmatch(m.Text)
	if match == nil {
		return nil, &ParseError{Category: CategoryQuizScore, Reason: "не найдено начисление"}
	}

	raw := strings.ReplaceAll(match[2], ",", ".")
	delta, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, &ParseError{Category: CategoryQuizScore, Reason: "некорректная сумма: " + match[2]}
	}
	if delta.Sign() <= 0 {
		return nil, &ParseError{Category: CategoryQuizScore, Reason: "начисление должно быть положительным"}
	}

	return []Event{{
		Game:     "quiz",
		Kind:     KindAccrual,
		Player:   PlayerRef{Username: match[1]},
		RawDelta: delta,
		Note:     "Викторина: правильный ответ",
	}}, nil
}
