// Package lexer finds monetary amounts in plain text.
//
// The lexer knows nothing about HTML: callers decide which text is eligible.
// Every call scans its input from the start, so a sequence can be ranged over
// any number of times and no match state is shared between strings.
package lexer

import (
	"iter"
	"regexp"
	"strings"

	"github.com/vincent-caetano/how-much/models"
)

// number is 1-3 leading digits, groups of exactly three, and an optional
// two-digit fraction. Either separator is accepted in either position.
const number = `\d{1,3}(?:[.,]\d{3})*(?:[.,]\d{2})?`

// space allows a single ordinary or no-break space, which shops love.
const space = `[\s\x{00A0}]?`

// priceRe matches "$ 1,234.56" / "R$1.234,56" / "€100" and "100 USD" / "1.000,00 BRL".
var priceRe = regexp.MustCompile(
	`(?i)(?:(?:R\$|€|\$)` + space + number + `)|(?:` + number + space + `(?:USD|EUR|BRL))`,
)

// FindPrices yields every price in text, left to right, without overlaps.
func FindPrices(text string) iter.Seq[models.PriceMatch] {
	return func(yield func(models.PriceMatch) bool) {
		pos := 0
		for pos < len(text) {
			loc := priceRe.FindStringIndex(text[pos:])
			if loc == nil {
				return
			}
			start, end := pos+loc[0], pos+loc[1]
			raw := text[start:end]
			m := models.PriceMatch{
				RawText:          raw,
				StartOffset:      start,
				Length:           end - start,
				DetectedCurrency: DetectCurrency(raw),
			}
			if !yield(m) {
				return
			}
			pos = end
		}
	}
}

// FindAll collects FindPrices into a slice.
func FindAll(text string) []models.PriceMatch {
	var out []models.PriceMatch
	for m := range FindPrices(text) {
		out = append(out, m)
	}
	return out
}

// Contains reports whether text holds at least one price.
func Contains(text string) bool {
	return priceRe.MatchString(text)
}

// DetectCurrency guesses the currency of a raw match from its symbol or code.
// This is a weak signal: the number format decides decimal vs thousands.
func DetectCurrency(raw string) models.CurrencyCode {
	upper := strings.ToUpper(raw)
	switch {
	case strings.Contains(upper, "R$"), strings.Contains(upper, "BRL"):
		return models.BRL
	case strings.Contains(upper, "€"), strings.Contains(upper, "EUR"):
		return models.EUR
	default:
		return models.USD
	}
}
