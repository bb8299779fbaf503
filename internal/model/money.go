package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Currency identifies a display currency supported by the calculator.
type Currency string

const (
	EUR Currency = "EUR"
	USD Currency = "USD"
)

// ParseCurrency validates a currency code.
func ParseCurrency(s string) (Currency, error) {
	switch Currency(s) {
	case EUR:
		return EUR, nil
	case USD:
		return USD, nil
	}
	return "", fmt.Errorf("model: unsupported currency %q (want EUR or USD)", s)
}

// Symbol returns the currency symbol for report output.
func (c Currency) Symbol() string {
	if c == USD {
		return "$"
	}
	return "€"
}

// EURAmount is a monetary amount in the reference currency (EUR).
// Every monetary value in this module is computed and stored as an
// EURAmount; the only way to obtain a value in another currency is In,
// which makes the conversion step explicit and single-shot.
type EURAmount struct {
	d decimal.Decimal
}

// EURFromDecimal wraps a decimal as a reference-currency amount.
func EURFromDecimal(d decimal.Decimal) EURAmount {
	return EURAmount{d: d}
}

// EURFromFloat wraps a float64 as a reference-currency amount.
func EURFromFloat(f float64) EURAmount {
	return EURAmount{d: decimal.NewFromFloat(f)}
}

// Decimal returns the underlying decimal value (still EUR).
func (a EURAmount) Decimal() decimal.Decimal { return a.d }

func (a EURAmount) Add(b EURAmount) EURAmount { return EURAmount{d: a.d.Add(b.d)} }
func (a EURAmount) Sub(b EURAmount) EURAmount { return EURAmount{d: a.d.Sub(b.d)} }

// MulScalar scales the amount by a dimensionless factor.
func (a EURAmount) MulScalar(f decimal.Decimal) EURAmount { return EURAmount{d: a.d.Mul(f)} }

// DivScalar divides the amount by a dimensionless factor. The caller must
// guard against a zero divisor.
func (a EURAmount) DivScalar(f decimal.Decimal) EURAmount { return EURAmount{d: a.d.Div(f)} }

func (a EURAmount) IsZero() bool                 { return a.d.IsZero() }
func (a EURAmount) IsPositive() bool             { return a.d.IsPositive() }
func (a EURAmount) IsNegative() bool             { return a.d.IsNegative() }
func (a EURAmount) Equal(b EURAmount) bool       { return a.d.Equal(b.d) }
func (a EURAmount) GreaterThan(b EURAmount) bool { return a.d.GreaterThan(b.d) }
func (a EURAmount) LessThan(b EURAmount) bool    { return a.d.LessThan(b.d) }

// InexactFloat64 returns the amount as a float64 for non-monetary math
// (ratios, chart scaling). Never feed the result back into a money field.
func (a EURAmount) InexactFloat64() float64 { return a.d.InexactFloat64() }

func (a EURAmount) String() string { return a.d.String() }

// In converts the reference amount into a display amount. eurUSD is the
// EUR→USD rate from the network snapshot; it is ignored for EUR.
func (a EURAmount) In(c Currency, eurUSD decimal.Decimal) DisplayAmount {
	if c == USD {
		return DisplayAmount{Value: a.d.Mul(eurUSD), Currency: USD}
	}
	return DisplayAmount{Value: a.d, Currency: EUR}
}

// MarshalJSON encodes the amount as a plain decimal number (EUR).
func (a EURAmount) MarshalJSON() ([]byte, error) { return a.d.MarshalJSON() }

// UnmarshalJSON decodes a plain decimal number as an EUR amount.
func (a *EURAmount) UnmarshalJSON(b []byte) error { return a.d.UnmarshalJSON(b) }

// DisplayAmount is a presentation-side amount. It exists only at the
// output-formatting boundary and never flows back into computation.
type DisplayAmount struct {
	Value    decimal.Decimal `json:"value"`
	Currency Currency        `json:"currency"`
}

// StringFixed renders the amount with the given number of decimals and the
// currency symbol, e.g. "171.88 €".
func (d DisplayAmount) StringFixed(places int32) string {
	return d.Value.StringFixed(places) + " " + d.Currency.Symbol()
}

func (d DisplayAmount) String() string { return d.StringFixed(2) }
