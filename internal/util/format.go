package util

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

type Currency struct {
	Code     string
	Symbol   string
	Decimals int32
}

var currencies = map[string]Currency{
	"USD": {Code: "USD", Symbol: "$", Decimals: 2},
	"COP": {Code: "COP", Symbol: "COP $", Decimals: 0},
}

// LookupCurrency returns the display settings for code. Unknown codes are
// shown with the code as prefix and two decimals.
func LookupCurrency(code string) (Currency, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if c, ok := currencies[code]; ok {
		return c, true
	}
	return Currency{Code: code, Symbol: code + " ", Decimals: 2}, false
}

// Format renders amount with the currency symbol, "," for thousands and
// "." for decimals.
func (c Currency) Format(amount float64) string {
	return c.Symbol + FormatMoney(amount, ",", ".", c.Decimals)
}

// FormatMoney rounds value to decimals places and groups the integer part
// in thousands.
func FormatMoney(value float64, thousand, decimal string, decimals int32) string {
	return FormatDecimal(DecimalFromFloat(value), thousand, decimal, decimals)
}

func FormatDecimal(value decimal.Decimal, thousand, decimalSep string, decimals int32) string {
	fixed := value.StringFixed(decimals)

	isNegative := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	integer, fraction, _ := strings.Cut(fixed, ".")

	// for each 3 digits put the thousand separator
	var b strings.Builder
	for i, digit := range integer {
		if i > 0 && (len(integer)-i)%3 == 0 {
			b.WriteString(thousand)
		}
		b.WriteRune(digit)
	}

	result := b.String()
	if fraction != "" {
		result += decimalSep + fraction
	}

	if isNegative && strings.Trim(result, "0"+thousand+decimalSep) != "" {
		return "-" + result
	}

	return result
}

// DecimalFromFloat converts value, mapping NaN and infinities to zero.
func DecimalFromFloat(value float64) decimal.Decimal {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(value)
}
