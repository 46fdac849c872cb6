// Package valueobject holds immutable value types shared across the
// domain. Points is the fungible unit of value moved through the
// allocation hierarchy; it is always fixed-point decimal, never float,
// so amounts survive a four-tier split without rounding drift.
package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Currency represents a points currency code. Tenants may label their
// points differently (plain points, or a currency-pegged program).
type Currency string

const (
	PTS Currency = "PTS" // Plain reward points (default)
	USD Currency = "USD" // US Dollar pegged
	EUR Currency = "EUR" // Euro pegged
	GBP Currency = "GBP" // British Pound pegged
)

// DefaultCurrency is the default points currency for the platform
const DefaultCurrency = PTS

// Points is a value object representing a points amount.
// It is immutable - all operations return new Points instances.
type Points struct {
	amount   decimal.Decimal
	currency Currency
}

// NewPoints creates Points with the specified amount and currency
func NewPoints(amount decimal.Decimal, currency Currency) (Points, error) {
	if currency == "" {
		return Points{}, errors.New("currency cannot be empty")
	}
	return Points{
		amount:   amount,
		currency: currency,
	}, nil
}

// NewPointsFromInt creates Points from an int64 value
func NewPointsFromInt(amount int64, currency Currency) Points {
	return Points{amount: decimal.NewFromInt(amount), currency: currency}
}

// NewPointsFromString creates Points from a string representation
func NewPointsFromString(amount string, currency Currency) (Points, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Points{}, fmt.Errorf("invalid amount string: %w", err)
	}
	return NewPoints(d, currency)
}

// NewPointsPTS creates Points in the default PTS currency
func NewPointsPTS(amount decimal.Decimal) Points {
	return Points{amount: amount, currency: PTS}
}

// Zero returns a zero-value Points in the specified currency
func Zero(currency Currency) Points {
	return Points{amount: decimal.Zero, currency: currency}
}

// ZeroPTS returns a zero-value Points in PTS
func ZeroPTS() Points {
	return Zero(PTS)
}

// Amount returns the decimal amount
func (p Points) Amount() decimal.Decimal {
	return p.amount
}

// Currency returns the currency code
func (p Points) Currency() Currency {
	return p.currency
}

// IsZero returns true if the amount is zero
func (p Points) IsZero() bool {
	return p.amount.IsZero()
}

// IsPositive returns true if the amount is strictly positive
func (p Points) IsPositive() bool {
	return p.amount.IsPositive()
}

// IsNegative returns true if the amount is negative
func (p Points) IsNegative() bool {
	return p.amount.IsNegative()
}

// Add returns new Points with the sum of both amounts.
// Returns error if currencies don't match.
func (p Points) Add(other Points) (Points, error) {
	if p.currency != other.currency {
		return Points{}, fmt.Errorf("cannot add points with different currencies: %s and %s", p.currency, other.currency)
	}
	return Points{
		amount:   p.amount.Add(other.amount),
		currency: p.currency,
	}, nil
}

// Subtract returns new Points with the difference.
// Returns error if currencies don't match.
func (p Points) Subtract(other Points) (Points, error) {
	if p.currency != other.currency {
		return Points{}, fmt.Errorf("cannot subtract points with different currencies: %s and %s", p.currency, other.currency)
	}
	return Points{
		amount:   p.amount.Sub(other.amount),
		currency: p.currency,
	}, nil
}

// Negate returns new Points with the sign reversed
func (p Points) Negate() Points {
	return Points{
		amount:   p.amount.Neg(),
		currency: p.currency,
	}
}

// Equals returns true if both Points values are equal (same amount and currency)
func (p Points) Equals(other Points) bool {
	return p.currency == other.currency && p.amount.Equal(other.amount)
}

// LessThan returns true if this Points is less than the other.
// Returns error if currencies don't match.
func (p Points) LessThan(other Points) (bool, error) {
	if p.currency != other.currency {
		return false, fmt.Errorf("cannot compare points with different currencies: %s and %s", p.currency, other.currency)
	}
	return p.amount.LessThan(other.amount), nil
}

// GreaterThan returns true if this Points is greater than the other
func (p Points) GreaterThan(other Points) (bool, error) {
	if p.currency != other.currency {
		return false, fmt.Errorf("cannot compare points with different currencies: %s and %s", p.currency, other.currency)
	}
	return p.amount.GreaterThan(other.amount), nil
}

// GreaterThanOrEqual returns true if this Points is greater than or equal to the other
func (p Points) GreaterThanOrEqual(other Points) (bool, error) {
	if p.currency != other.currency {
		return false, fmt.Errorf("cannot compare points with different currencies: %s and %s", p.currency, other.currency)
	}
	return p.amount.GreaterThanOrEqual(other.amount), nil
}

// String returns a string representation of the Points
func (p Points) String() string {
	return fmt.Sprintf("%s %s", p.amount.StringFixed(2), p.currency)
}

// MarshalJSON implements json.Marshaler
func (p Points) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Amount   string   `json:"amount"`
		Currency Currency `json:"currency"`
	}{
		Amount:   p.amount.String(),
		Currency: p.currency,
	})
}

// UnmarshalJSON implements json.Unmarshaler
func (p *Points) UnmarshalJSON(data []byte) error {
	var v struct {
		Amount   string   `json:"amount"`
		Currency Currency `json:"currency"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	amount, err := decimal.NewFromString(v.Amount)
	if err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}
	p.amount = amount
	p.currency = v.Currency
	return nil
}

// Value implements driver.Valuer for database storage.
// Stores the amount only; currency lives in its own column.
func (p Points) Value() (driver.Value, error) {
	return p.amount.String(), nil
}

// Scan implements sql.Scanner for database retrieval. Only the amount
// is scanned; when the currency is not already set it falls back to
// DefaultCurrency.
func (p *Points) Scan(value any) error {
	if value == nil {
		p.amount = decimal.Zero
		p.currency = DefaultCurrency
		return nil
	}

	var strVal string
	switch v := value.(type) {
	case string:
		strVal = v
	case []byte:
		strVal = string(v)
	default:
		return fmt.Errorf("cannot scan %T into Points", value)
	}

	amount, err := decimal.NewFromString(strVal)
	if err != nil {
		return fmt.Errorf("invalid decimal value: %w", err)
	}
	p.amount = amount
	if p.currency == "" {
		p.currency = DefaultCurrency
	}
	return nil
}
