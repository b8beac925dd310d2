package normalizer

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vincent-caetano/how-much/models"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		weak models.CurrencyCode
		want string
	}{
		{"us grouping with cents", "$1,234.56", models.USD, "1234.56"},
		{"us thousands only", "1,000", models.USD, "1000"},
		{"br grouping with cents", "R$ 1.234,56", models.BRL, "1234.56"},
		{"br thousands only", "1.000", models.BRL, "1000"},
		{"dot thousands win over usd hint", "$1.000", models.USD, "1000"},
		{"brl written us style", "R$ 2,789.07", models.BRL, "2789.07"},
		{"usd written eu style", "$2.789,07", models.USD, "2789.07"},
		{"single dot short fraction", "$1.5", models.USD, "1.5"},
		{"single dot two digits", "€19.99", models.EUR, "19.99"},
		{"multiple dots", "1.234.567", models.EUR, "1234567"},
		{"multiple commas", "1,234,567", models.USD, "1234567"},
		{"single comma cents", "12,50 EUR", models.EUR, "12.5"},
		{"single comma one digit", "R$ 3,5", models.BRL, "3.5"},
		{"last separator decides", "1,5.25", models.USD, "15.25"},
		{"single dot long tail defaults to decimal", "1.2345", models.BRL, "1.2345"},
		{"no separators usd", "$1500", models.USD, "1500"},
		{"no separators brl", "1500 BRL", models.BRL, "1500"},
		{"full brl with code", "1.000,00 BRL", models.BRL, "1000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.raw, tt.weak)
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got.Value), "Normalize(%q) = %s, want %s", tt.raw, got.Value, tt.want)
			assert.Equal(t, tt.weak, got.Currency)
		})
	}
}

func TestNormalize_NotAPrice(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"zero with cents", "$0.00"},
		{"zero", "0 USD"},
		{"no digits", "USD"},
		{"only separators", "$.,"},
		{"empty", ""},
		{"malformed eu", "1.2.3,4,5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.raw, models.USD)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrNotAPrice), "error %v should wrap ErrNotAPrice", err)
		})
	}
}

func TestDetectStyle(t *testing.T) {
	tests := []struct {
		clean string
		weak  models.CurrencyCode
		want  Style
	}{
		{"2,789.07", models.BRL, StyleUS},
		{"2.789,07", models.USD, StyleEU},
		{"1.50", models.EUR, StyleUS},
		{"1.000", models.USD, StyleEU},
		{"1,000", models.BRL, StyleUS},
		{"1,00", models.USD, StyleEU},
		{"100", models.USD, StyleUS},
		{"100", models.EUR, StyleEU},
		{"100", models.BRL, StyleEU},
	}
	for _, tt := range tests {
		t.Run(tt.clean+"/"+string(tt.weak), func(t *testing.T) {
			assert.Equal(t, tt.want, DetectStyle(tt.clean, tt.weak))
		})
	}
}

func TestClean(t *testing.T) {
	assert.Equal(t, "1.234,56", Clean("R$ 1.234,56"))
	assert.Equal(t, "100", Clean("100 USD"))
}

func TestParseSalary(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		cur     models.CurrencyCode
		want    string
		wantErr bool
	}{
		{"usd grouped", "1,256.67", models.USD, "1256.67", false},
		{"brl grouped", "3.500,50", models.BRL, "3500.5", false},
		{"eur plain", "2000", models.EUR, "2000", false},
		{"brl dots are grouping", "1.500", models.BRL, "1500", false},
		{"zero", "0", models.USD, "", true},
		{"garbage", "lots", models.USD, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSalary(tt.raw, tt.cur)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "ParseSalary(%q) = %s, want %s", tt.raw, got, tt.want)
		})
	}
}
