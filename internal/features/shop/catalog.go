// Package shop реализует магазин: покупка списывает очки через журнал
// и выдаёт временный грант.
// catalog.go описывает каталог товаров.
package shop

import (
	"time"

	"github.com/shopspring/decimal"

	"rolevka.ru/points-bot/internal/entitlements"
)

// Item — товар магазина. Покупка создаёт запись журнала типа buy
// и грант соответствующего вида на Duration.
type Item struct {
	Code      string
	Title     string
	Price     decimal.Decimal
	GrantKind string
	Duration  time.Duration
}

// Catalog — каталог магазина. Задан в коде: ассортимент меняется релизом.
var Catalog = []Item{
	{
		Code:      "stickers",
		Title:     "Стикерпак «Рольф»",
		Price:     decimal.NewFromInt(300),
		GrantKind: entitlements.KindStickerPackBasic,
		Duration:  30 * 24 * time.Hour,
	},
	{
		Code:      "stickers_plus",
		Title:     "Стикерпак «Рольф Premium»",
		Price:     decimal.NewFromInt(800),
		GrantKind: entitlements.KindStickerPackPremium,
		Duration:  30 * 24 * time.Hour,
	},
	{
		Code:      "title",
		Title:     "Кастомный титул в чате",
		Price:     decimal.NewFromInt(500),
		GrantKind: entitlements.KindCustomTitle,
		Duration:  14 * 24 * time.Hour,
	},
}

// FindItem ищет товар по коду.
func FindItem(code string) (Item, bool) {
	for _, it := range Catalog {
		if it.Code == code {
			return it, true
		}
	}
	return Item{}, false
}
