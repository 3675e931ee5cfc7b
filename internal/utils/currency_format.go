package utils

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FormatAmount renders a signed amount for display, with the currency symbol
// and the digit grouping of the given locale. Positive amounts carry a leading
// plus sign, as in "+$ 10.00" or "-€ 1,234.50".
func FormatAmount(amount decimal.Decimal, currencyCode string, locale string) (string, error) {
	unit, err := currency.ParseISO(currencyCode)
	if err != nil {
		return "", fmt.Errorf("invalid currency code %q: %w", currencyCode, err)
	}
	tag, err := language.Parse(strings.ReplaceAll(locale, "_", "-"))
	if err != nil {
		return "", fmt.Errorf("invalid locale %q: %w", locale, err)
	}

	sign := ""
	switch {
	case amount.IsPositive():
		sign = "+"
	case amount.IsNegative():
		sign = "-"
	}
	abs, _ := amount.Abs().Round(2).Float64()

	p := message.NewPrinter(tag)
	return sign + p.Sprint(currency.Symbol(unit.Amount(abs))), nil
}

// IsISO4217 reports whether code is a known ISO 4217 currency code.
func IsISO4217(code string) bool {
	if len(code) != 3 || strings.ToUpper(code) != code {
		return false
	}
	_, err := currency.ParseISO(code)
	return err == nil
}
