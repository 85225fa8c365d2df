// Package games — gameend.go разбирает итоговые сообщения ролевых игр.
// Боты «Бункер РП» и «Мафия» публикуют в своих чатах итог партии со списком
// победителей и наградой; оба формата разбираются общими помощниками.
package games

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	winnersRe = regexp.MustCompile(`(?i)Победители:\s*(.+)`)
	rewardRe  = regexp.MustCompile(`(?i)Награда:\s*([0-9]+(?:[.,][0-9]+)?)`)
	mentionRe = regexp.MustCompile(`@([A-Za-z0-9_]{3,32})`)
)

func matchBunkerWin(m Message) bool {
	return m.Game == "bunker" &&
		strings.Contains(m.Text, "Игра окончена") &&
		winnersRe.MatchString(m.Text)
}

func parseBunkerWin(m Message) ([]Event, error) {
	return parseGameEnd(m, CategoryBunkerWin, "bunker", "Победа в «Бункер РП»")
}

func matchMafiaWin(m Message) bool {
	return m.Game == "mafia" &&
		strings.Contains(m.Text, "Игра завершена") &&
		winnersRe.MatchString(m.Text)
}

func parseMafiaWin(m Message) ([]Event, error) {
	return parseGameEnd(m, CategoryMafiaWin, "mafia", "Победа в «Мафии»")
}

// parseGameEnd извлекает награду и список победителей.
// Одна партия с несколькими победителями даёт несколько событий,
// которые дальше по пайплайну живут одной группой с общим отпечатком.
func parseGameEnd(m Message, cat Category, game, note string) ([]Event, error) {
	reward, err := parseReward(m.Text, cat)
	if err != nil {
		return nil, err
	}

	winners := parseWinners(m.Text)
	if len(winners) == 0 {
		return nil, &ParseError{Category: cat, Reason: "не найден список победителей"}
	}

	events := make([]Event, 0, len(winners))
	for _, w := range winners {
		events = append(events, Event{
			Game:     game,
			Kind:     KindGameEndWin,
			Player:   w,
			RawDelta: reward,
			Note:     note,
		})
	}
	return events, nil
}

// parseReward извлекает сумму награды после «Награда:».
// Десятичная запятая допускается, точность сохраняется без float.
func parseReward(text string, cat Category) (decimal.Decimal, error) {
	match := rewardRe.FindStringSubmatch(text)
	if match == nil {
		return decimal.Decimal{}, &ParseError{Category: cat, Reason: "не указана награда"}
	}
	raw := strings.ReplaceAll(match[1], ",", ".")
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, &ParseError{Category: cat, Reason: "некорректная сумма награды: " + match[1]}
	}
	if d.Sign() <= 0 {
		return decimal.Decimal{}, &ParseError{Category: cat, Reason: "награда должна быть положительной"}
	}
	return d, nil
}

// parseWinners извлекает упоминания @username из строки победителей.
// Повторы схлопываются: один игрок не может выиграть партию дважды.
func parseWinners(text string) []PlayerRef {
	match := winnersRe.FindStringSubmatch(text)
	if match == nil {
		return nil
	}

	seen := make(map[string]struct{})
	var out []PlayerRef
	for _, m := range mentionRe.FindAllStringSubmatch(match[1], -1) {
		name := strings.ToLower(m[1])
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, PlayerRef{Username: m[1]})
	}
	return out
}
