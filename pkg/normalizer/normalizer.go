// Package normalizer turns a raw price match into a number, deciding which of
// "." and "," is the decimal separator.
//
// The number's own shape is the authority. The currency found next to it only
// breaks ties when the digits carry no separator at all, because the same
// symbol shows up formatted both ways (search engines render BRL with US
// grouping, for instance). Inputs such as "1.000" stay ambiguous; the rules
// below are a best-effort policy and are kept stable on purpose.
package normalizer

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vincent-caetano/how-much/models"
)

// ErrNotAPrice is returned when the digits do not parse or parse to zero.
// Callers leave the source text untouched.
var ErrNotAPrice = errors.New("not a parsable price")

// Style says which separator is the decimal point.
type Style int

const (
	// StyleUS writes 1,234.56: dot decimal, comma thousands.
	StyleUS Style = iota
	// StyleEU writes 1.234,56: comma decimal, dot thousands.
	StyleEU
)

func (s Style) String() string {
	if s == StyleEU {
		return "eu"
	}
	return "us"
}

var (
	usGroupRe = regexp.MustCompile(`,\d{3}\.`) // e.g. "2,789.07"
	euGroupRe = regexp.MustCompile(`\.\d{3},`) // e.g. "2.789,07"
)

// Clean drops every character except digits, "." and ",".
func Clean(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// DetectStyle applies the separator heuristics to a cleaned string, in priority order.
func DetectStyle(clean string, weak models.CurrencyCode) Style {
	hasDot := strings.Contains(clean, ".")
	hasComma := strings.Contains(clean, ",")

	switch {
	case usGroupRe.MatchString(clean):
		return StyleUS
	case euGroupRe.MatchString(clean):
		return StyleEU
	case hasDot && hasComma:
		// Whichever separator comes last is the decimal one.
		if strings.LastIndex(clean, ".") > strings.LastIndex(clean, ",") {
			return StyleUS
		}
		return StyleEU
	case hasDot:
		parts := strings.Split(clean, ".")
		last := parts[len(parts)-1]
		switch {
		case len(parts) == 2 && len(last) <= 2:
			return StyleUS
		case len(parts) > 2 || len(last) == 3:
			return StyleEU // dots are grouping
		default:
			return StyleUS
		}
	case hasComma:
		parts := strings.Split(clean, ",")
		if len(parts[len(parts)-1]) == 3 {
			return StyleUS // comma is grouping, no fraction
		}
		return StyleEU
	default:
		if weak.Info().USStyle() {
			return StyleUS
		}
		return StyleEU
	}
}

// Canonical strips grouping separators and leaves a single "." as the decimal point.
func Canonical(clean string, style Style) string {
	if style == StyleUS {
		return strings.ReplaceAll(clean, ",", "")
	}
	return strings.ReplaceAll(strings.ReplaceAll(clean, ".", ""), ",", ".")
}

// Normalize parses a raw lexer match. weak is the currency detected from the
// symbol or code and becomes the amount's currency.
func Normalize(raw string, weak models.CurrencyCode) (models.ParsedAmount, error) {
	clean := Clean(raw)
	if strings.Trim(clean, ".,") == "" {
		return models.ParsedAmount{}, fmt.Errorf("%w: %q has no digits", ErrNotAPrice, raw)
	}

	value, err := decimal.NewFromString(Canonical(clean, DetectStyle(clean, weak)))
	if err != nil {
		return models.ParsedAmount{}, fmt.Errorf("%w: %q: %v", ErrNotAPrice, raw, err)
	}
	if value.Sign() <= 0 {
		return models.ParsedAmount{}, fmt.Errorf("%w: %q is zero", ErrNotAPrice, raw)
	}

	return models.ParsedAmount{Value: value, Currency: weak}, nil
}

// ParseSalary reads a salary typed by the user, trusting the currency's own
// convention instead of guessing ("1.500" is fifteen hundred reais).
func ParseSalary(raw string, cur models.CurrencyCode) (decimal.Decimal, error) {
	clean := Clean(raw)
	info := cur.Info()
	clean = strings.ReplaceAll(clean, info.Separator, "")
	if !info.USStyle() {
		clean = strings.Replace(clean, info.Decimal, ".", 1)
	}

	value, err := decimal.NewFromString(clean)
	if err != nil || value.Sign() <= 0 {
		return decimal.Zero, fmt.Errorf("invalid salary %q for %s", raw, cur)
	}
	return value, nil
}
