package claims

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const displayFractionDigits = 4

var printer = message.NewPrinter(language.English)

// ToUnits scales a base-unit integer string down by decimals.
func ToUnits(base string, decimals int32) (decimal.Decimal, error) {
	if decimals < 0 {
		return decimal.Zero, fmt.Errorf("claims: negative decimals %d", decimals)
	}
	d, err := decimal.NewFromString(base)
	if err != nil {
		return decimal.Zero, fmt.Errorf("claims: parse amount %q: %w", base, err)
	}
	if !d.Equal(d.Truncate(0)) {
		return decimal.Zero, fmt.Errorf("claims: amount %q is not an integer", base)
	}
	return d.Shift(-decimals), nil
}

// FormatAmount renders a base-unit amount for display, grouped and rounded
// to four fractional digits.
func FormatAmount(base string, decimals int32) (string, error) {
	d, err := ToUnits(base, decimals)
	if err != nil {
		return "", err
	}
	f := d.Round(displayFractionDigits).InexactFloat64()
	return printer.Sprint(number.Decimal(f, number.MaxFractionDigits(displayFractionDigits))), nil
}

// FormatTokenAmount is FormatAmount followed by the token ticker.
func FormatTokenAmount(base string, decimals int32, ticker string) (string, error) {
	s, err := FormatAmount(base, decimals)
	if err != nil {
		return "", err
	}
	if ticker == "" {
		return s, nil
	}
	return s + " " + ticker, nil
}
