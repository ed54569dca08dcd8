package domain

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Amount is an optional EUR figure. The zero value is unavailable; a JSON null
// or a missing field never turns into zero.
type Amount struct {
	Value decimal.Decimal
	Valid bool
}

// NewAmount returns an available amount.
func NewAmount(d decimal.Decimal) Amount {
	return Amount{Value: d, Valid: true}
}

// AmountFromInt returns an available amount of whole euros.
func AmountFromInt(v int64) Amount {
	return NewAmount(decimal.NewFromInt(v))
}

// Unavailable returns the explicit "no data" amount.
func Unavailable() Amount {
	return Amount{}
}

// Or returns the value when available, otherwise fallback.
func (a Amount) Or(fallback decimal.Decimal) decimal.Decimal {
	if !a.Valid {
		return fallback
	}
	return a.Value
}

// Positive reports whether the amount is available and strictly above zero.
func (a Amount) Positive() bool {
	return a.Valid && a.Value.IsPositive()
}

// Add returns a+d. An unavailable amount stays unavailable.
func (a Amount) Add(d decimal.Decimal) Amount {
	if !a.Valid {
		return a
	}
	return NewAmount(a.Value.Add(d))
}

func (a Amount) String() string {
	if !a.Valid {
		return "n/a"
	}
	return a.Value.String()
}

func (a Amount) MarshalJSON() ([]byte, error) {
	if !a.Valid {
		return []byte("null"), nil
	}
	return a.Value.MarshalJSON()
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*a = Amount{}
		return nil
	}
	var d decimal.Decimal
	if err := json.Unmarshal(data, &d); err != nil {
		return fmt.Errorf("parsing amount %s: %w", string(data), err)
	}
	*a = NewAmount(d)
	return nil
}
