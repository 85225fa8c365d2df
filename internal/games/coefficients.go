// Package games — coefficients.go содержит таблицу коэффициентов.
// Коэффициент превращает сырую дельту из сообщения в очки леджера.
// Записи леджера хранят уже умноженную сумму, поэтому изменение таблицы
// не переписывает историю задним числом.
package games

import "github.com/shopspring/decimal"

type coefficientKey struct {
	Game string
	Kind Kind
}

// Таблица коэффициентов по играм:
//
//	karma  / karma          ×10 — благодарность дорогая, но редкая (лимиты в чате)
//	bunker / game-end-win   ×20 — длинные партии, крупная награда
//	mafia  / game-end-win   ×15
//	quiz   / accrual        ×2  — частые мелкие начисления
//	anketa / profile-update ×1
var coefficients = map[coefficientKey]decimal.Decimal{
	{Game: "karma", Kind: KindKarma}:          decimal.NewFromInt(10),
	{Game: "bunker", Kind: KindGameEndWin}:    decimal.NewFromInt(20),
	{Game: "mafia", Kind: KindGameEndWin}:     decimal.NewFromInt(15),
	{Game: "quiz", Kind: KindAccrual}:         decimal.NewFromInt(2),
	{Game: "anketa", Kind: KindProfileUpdate}: decimal.NewFromInt(1),
}

// Coefficient возвращает множитель для пары игра/вид события.
// ok=false означает ошибку конфигурации: парсер выдал событие,
// для которого коэффициент не задан.
func Coefficient(game string, kind Kind) (decimal.Decimal, bool) {
	c, ok := coefficients[coefficientKey{Game: game, Kind: kind}]
	return c, ok
}
