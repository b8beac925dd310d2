package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// CurrencyCode is an ISO-4217 code supported by the converter.
type CurrencyCode string

const (
	USD CurrencyCode = "USD"
	EUR CurrencyCode = "EUR"
	BRL CurrencyCode = "BRL"
)

// ErrUnsupportedCurrency is returned for valid ISO codes that have no entry in the
// currency table, and for strings that are not ISO codes at all.
var ErrUnsupportedCurrency = errors.New("unsupported currency")

// CurrencyInfo describes how amounts in a currency are written.
type CurrencyInfo struct {
	Code      CurrencyCode
	Symbol    string
	Decimal   string
	Separator string
}

// USStyle reports whether the currency writes "1,234.56".
func (ci CurrencyInfo) USStyle() bool {
	return ci.Decimal == "."
}

// Format renders an amount with the currency's separators. Whole amounts get no
// fractional part, anything else is shown with two places.
func (ci CurrencyInfo) Format(d decimal.Decimal) string {
	places := int32(0)
	if !d.Equal(d.Truncate(0)) {
		places = 2
	}
	s := d.StringFixed(places)

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, hasFrac := strings.Cut(s, ".")

	var b strings.Builder
	b.WriteString(sign)
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteString(ci.Separator)
		}
		b.WriteRune(r)
	}
	if hasFrac {
		b.WriteString(ci.Decimal)
		b.WriteString(frac)
	}
	return b.String()
}

// Currencies is the formatting table for every supported currency.
var Currencies = map[CurrencyCode]CurrencyInfo{
	USD: {Code: USD, Symbol: "$", Decimal: ".", Separator: ","},
	EUR: {Code: EUR, Symbol: "€", Decimal: ",", Separator: "."},
	BRL: {Code: BRL, Symbol: "R$", Decimal: ",", Separator: "."},
}

// Info returns the formatting convention for c, falling back to USD.
func (c CurrencyCode) Info() CurrencyInfo {
	if info, ok := Currencies[c]; ok {
		return info
	}
	return Currencies[USD]
}

// ParseCurrency validates s as an ISO-4217 code present in the currency table.
func ParseCurrency(s string) (CurrencyCode, error) {
	unit, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(s)))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedCurrency, s)
	}
	code := CurrencyCode(unit.String())
	if _, ok := Currencies[code]; !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedCurrency, code)
	}
	return code, nil
}

// RateTable maps a currency to how many units of it buy one US dollar.
type RateTable map[CurrencyCode]decimal.Decimal

// DefaultRates is the static table shipped with the binary. Rates are not live.
func DefaultRates() RateTable {
	return RateTable{
		USD: decimal.NewFromInt(1),
		EUR: decimal.RequireFromString("0.92"),
		BRL: decimal.RequireFromString("5.00"),
	}
}
