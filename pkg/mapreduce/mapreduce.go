// Package mapreduce tallies annotated prices across documents.
package mapreduce

import "github.com/vincent-caetano/how-much/models"

// MapCurrencies counts a single document's annotations by currency.
func MapCurrencies(annotations []models.Annotation) map[string]int {
	counts := make(map[string]int)
	for _, a := range annotations {
		counts[string(a.Currency)]++
	}
	return counts
}

// Reduce aggregates a slice of count maps into a single map.
func Reduce(intermediate []map[string]int) map[string]int {
	finalResults := make(map[string]int)

	for _, counts := range intermediate {
		for key, count := range counts {
			finalResults[key] += count
		}
	}

	return finalResults
}
