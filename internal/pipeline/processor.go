// Package pipeline — processor.go превращает игровые события в записи журнала.
// Здесь применяется коэффициент игры: запись хранит уже умноженную сумму,
// поэтому смена коэффициентов не трогает историю.
package pipeline

import (
	"fmt"

	"rolevka.ru/points-bot/internal/games"
	"rolevka.ru/points-bot/internal/ledger"
)

// BuildEntries считает подписанные суммы для группы событий одного сообщения.
// Все события должны быть уже разрешены (известен UserID каждого игрока).
func BuildEntries(events []games.Event) ([]ledger.Entry, error) {
	entries := make([]ledger.Entry, 0, len(events))
	for _, ev := range events {
		if !ev.Player.Resolved() {
			return nil, fmt.Errorf("игрок %s не разрешён в ID", ev.Player)
		}

		coeff, ok := games.Coefficient(ev.Game, ev.Kind)
		if !ok {
			return nil, fmt.Errorf("нет коэффициента для %s/%s", ev.Game, ev.Kind)
		}

		entries = append(entries, ledger.Entry{
			UserID:      ev.Player.UserID,
			Amount:      ev.RawDelta.Mul(coeff),
			Type:        ledger.TypeGameCredit,
			Description: ev.Note,
		})
	}
	return entries, nil
}
