package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// MinorDigits is the number of minor-unit digits every supported currency uses.
const MinorDigits = 2

// Amount is a monetary value in integer minor units (kopecks, cents).
type Amount int64

// Times returns the amount multiplied by a quantity.
func (a Amount) Times(quantity int) Amount {
	return a * Amount(quantity)
}

// Major returns the exact major-unit value of the amount.
func (a Amount) Major() decimal.Decimal {
	return decimal.New(int64(a), -MinorDigits)
}

// ParseMajor converts a major-unit decimal literal such as "250" or "4.50" into minor units.
// Literals carrying more precision than the minor unit are rejected instead of rounded.
func ParseMajor(literal string) (Amount, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(literal))
	if err != nil {
		return 0, fmt.Errorf("invalid price %q: %w", literal, err)
	}
	return FromMajor(d)
}

// FromMajor converts a major-unit decimal into minor units.
func FromMajor(d decimal.Decimal) (Amount, error) {
	minor := d.Shift(MinorDigits)
	if !minor.IsInteger() {
		return 0, fmt.Errorf("price %s has sub-minor precision", d.String())
	}
	return Amount(minor.IntPart()), nil
}

// Symbol returns the narrow display symbol of an ISO currency code in the given locale,
// or the upper-cased code when the code is not a known currency.
func Symbol(code string, tag language.Tag) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	unit, err := currency.ParseISO(code)
	if err != nil {
		return code
	}
	return message.NewPrinter(tag).Sprint(currency.NarrowSymbol(unit))
}

// Format renders an amount with locale digit grouping, e.g. "1 250,00 ₽" for Russian.
func Format(a Amount, tag language.Tag, currencyCode string) string {
	p := message.NewPrinter(tag)

	sign := ""
	v := int64(a)
	if v < 0 {
		sign = "-"
		v = -v
	}

	major := p.Sprintf("%d", v/100)
	sep := decimalSeparator(p)

	out := fmt.Sprintf("%s%s%s%02d", sign, major, sep, v%100)
	if currencyCode == "" {
		return out
	}
	return out + " " + Symbol(currencyCode, tag)
}

func decimalSeparator(p *message.Printer) string {
	sample := p.Sprintf("%.1f", 1.5)
	if len(sample) == 3 {
		return sample[1:2]
	}
	return "."
}
