// Package common — pluralize.go содержит форматирование сумм в очках.
// Основная логика склонения реализована в helpers.go,
// этот файл экспортирует утилиты для вывода сумм пользователю.
package common

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// FormatPoints создаёт строку вида "150 очков" или "2.5 очка".
func FormatPoints(d decimal.Decimal) string {
	return fmt.Sprintf("%s %s", d.String(), pluralBase(d))
}

// FormatPointsDelta создаёт строку вида "+100 очков" или "-50 очков".
// Знак «+» добавляется автоматически для неотрицательных сумм.
func FormatPointsDelta(d decimal.Decimal) string {
	if d.Sign() >= 0 {
		return "+" + FormatPoints(d)
	}
	return FormatPoints(d)
}
