package metrics

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// NotAvailable is rendered for values that are not finite.
const NotAvailable = "—"

// CurrencyFields is the allowlist of fields rendered as money.
var CurrencyFields = []string{"price", "cost", "compareAtPrice", "total", "totalPrice"}

// IsCurrencyField reports whether field is in CurrencyFields.
func IsCurrencyField(field string) bool {
	for _, f := range CurrencyFields {
		if f == field {
			return true
		}
	}
	return false
}

// FormatOptions selects the presentation of a value.
type FormatOptions struct {
	Currency   bool
	Abbreviate bool
	// Locale drives thousands separators; English when unset.
	Locale language.Tag
	// Symbol is the currency glyph, "$" when unset.
	Symbol string
}

// Format renders a metric value. Abbreviation turns magnitudes of at least a
// million into "#.#M" and at least a thousand into "#.#K"; currency prefixes
// the glyph and keeps two decimals; everything else uses locale separators
// with at most two decimals.
func Format(value float64, opts FormatOptions) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return NotAvailable
	}
	tag := opts.Locale
	if tag == language.Und {
		tag = language.English
	}
	p := message.NewPrinter(tag)
	symbol := ""
	if opts.Currency {
		symbol = opts.Symbol
		if symbol == "" {
			symbol = "$"
		}
	}
	sign := ""
	if value < 0 {
		sign = "-"
		value = -value
	}

	if opts.Abbreviate {
		switch {
		case value >= 1_000_000:
			return sign + symbol + p.Sprintf("%.1fM", value/1_000_000)
		case value >= 1_000:
			return sign + symbol + p.Sprintf("%.1fK", value/1_000)
		}
	}
	if opts.Currency {
		return sign + symbol + p.Sprintf("%.2f", value)
	}
	return sign + p.Sprint(number.Decimal(value, number.MaxFractionDigits(2)))
}

// FormatField formats value applying the currency allowlist to field.
func FormatField(value float64, field string, abbreviate bool) string {
	return Format(value, FormatOptions{Currency: IsCurrencyField(field), Abbreviate: abbreviate})
}
