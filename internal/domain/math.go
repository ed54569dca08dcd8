package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrAmbiguousNumber marks a dot-separated figure that could be read either
// as thousands or as decimals.
var ErrAmbiguousNumber = errors.New("ambiguous number")

// ParseFinnishNumber parses numbers the way they are written in Finnish
// financial statements and human answers: "150 000", "1.234,56", "0,8", "-5 000 €".
func ParseFinnishNumber(raw string) (decimal.Decimal, error) {
	s := stripSeparators(raw)
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty number")
	}

	d, err := decimal.NewFromString(normalizeEuropeanDecimal(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid number: %q", raw)
	}
	return d, nil
}

func stripSeparators(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimSuffix(s, "€")
	s = strings.TrimSuffix(strings.TrimSpace(s), "EUR")
	s = strings.TrimSpace(s)
	// Both regular and no-break spaces are used as thousands separators.
	s = strings.NewReplacer(" ", "", "\u00a0", "", "\u202f", "").Replace(s)
	return strings.Replace(s, "\u2212", "-", 1)
}

// ParseEuroAmount is ParseFinnishNumber for euro figures typed by a person.
// A dot-only figure like "150.5" is rejected as ambiguous instead of being
// read as decimals.
func ParseEuroAmount(raw string) (decimal.Decimal, error) {
	d, err := ParseFinnishNumber(raw)
	if err != nil {
		return d, err
	}
	if strings.Contains(raw, ".") && !strings.Contains(raw, ",") && !dotThousands(stripSeparators(raw)) {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrAmbiguousNumber, raw)
	}
	return d, nil
}

// normalizeEuropeanDecimal converts European decimal format to standard format.
// "0,8" → "0.8", "1.234,56" → "1234.56", "150.000" → "150000", "1.5" → "1.5"
func normalizeEuropeanDecimal(s string) string {
	hasComma := strings.Contains(s, ",")
	hasDot := strings.Contains(s, ".")

	switch {
	case hasComma && hasDot:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case hasComma:
		s = strings.Replace(s, ",", ".", 1)
	case hasDot && dotThousands(s):
		s = strings.ReplaceAll(s, ".", "")
	}
	return s
}

// dotThousands reports whether every dot-separated group after the first has
// exactly three digits, as in "150.000" or "1.234.567".
func dotThousands(s string) bool {
	groups := strings.Split(strings.TrimLeft(s, "+-"), ".")
	if len(groups) < 2 || groups[0] == "" || len(groups[0]) > 3 {
		return false
	}
	for _, g := range groups[1:] {
		if len(g) != 3 || strings.Trim(g, "0123456789") != "" {
			return false
		}
	}
	return true
}

// RoundEUR rounds to whole euros.
func RoundEUR(d decimal.Decimal) decimal.Decimal {
	return d.Round(0)
}

// MinDecimal returns the smaller of a and b.
func MinDecimal(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// MaxDecimal returns the larger of a and b.
func MaxDecimal(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// Clamp limits d to [lo, hi].
func Clamp(d, lo, hi decimal.Decimal) decimal.Decimal {
	return MinDecimal(MaxDecimal(d, lo), hi)
}

// FormatEUR writes whole euros with space thousands separators: "1 234 567".
func FormatEUR(d decimal.Decimal) string {
	s := d.Round(0).String()
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
