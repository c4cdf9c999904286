package limit

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var esAR = message.NewPrinter(language.MustParse("es-AR"))

// FormatMoney renders an amount for display in the fixed locale of the app
// (es-AR pesos, no fraction digits): 1234.56 -> "$ 1.235".
func FormatMoney(amount decimal.Decimal) string {
	f, _ := amount.Float64()
	return esAR.Sprintf("$ %v", number.Decimal(f, number.MaxFractionDigits(0)))
}
