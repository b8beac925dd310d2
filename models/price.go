package models

import "github.com/shopspring/decimal"

// PriceMatch is a monetary substring found by the lexer. Offsets are in bytes.
type PriceMatch struct {
	RawText          string
	StartOffset      int
	Length           int
	DetectedCurrency CurrencyCode
}

// End returns the byte offset just past the match.
func (m PriceMatch) End() int {
	return m.StartOffset + m.Length
}

// ParsedAmount is a normalized price. Value is always greater than zero.
type ParsedAmount struct {
	Value    decimal.Decimal
	Currency CurrencyCode
}

// TimeCost is how much work a price represents. It is derived, never stored.
type TimeCost struct {
	TotalHours float64
	Days       float64
}
