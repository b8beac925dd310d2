package converter

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vincent-caetano/how-much/models"
	"github.com/vincent-caetano/how-much/pkg/lexer"
)

func usdWage(salary string) models.WageProfile {
	return models.WageProfile{
		SalaryAmount:        decimal.RequireFromString(salary),
		SalaryCurrency:      models.USD,
		WorkingDaysPerMonth: 22,
		WorkingHoursPerDay:  8,
	}
}

func amount(v string, cur models.CurrencyCode) models.ParsedAmount {
	return models.ParsedAmount{Value: decimal.RequireFromString(v), Currency: cur}
}

func TestToTimeCost_MinimumWage(t *testing.T) {
	c := New(nil)
	wage := usdWage("1256.67")

	cost, err := c.ToTimeCost(amount("100", models.USD), wage)
	require.NoError(t, err)
	assert.InDelta(t, 1.75, cost.Days, 0.01)
	assert.InDelta(t, 14.0, cost.TotalHours, 0.05)
	assert.Equal(t, "1d6h", FormatDuration(cost.TotalHours, wage.WorkingHoursPerDay))
}

func TestToTimeCost_CrossCurrency(t *testing.T) {
	c := New(nil)
	// 2200 USD a month is 100 USD a day; 500 BRL is 100 USD.
	cost, err := c.ToTimeCost(amount("500", models.BRL), usdWage("2200"))
	require.NoError(t, err)
	assert.InDelta(t, 1.0, cost.Days, 1e-9)

	// A BRL salary of 11000 is also 100 USD a day.
	brlWage := models.WageProfile{
		SalaryAmount:        decimal.NewFromInt(11000),
		SalaryCurrency:      models.BRL,
		WorkingDaysPerMonth: 22,
		WorkingHoursPerDay:  8,
	}
	cost, err = c.ToTimeCost(amount("50", models.USD), brlWage)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, cost.Days, 1e-9)
	assert.InDelta(t, 4.0, cost.TotalHours, 1e-9)
}

func TestToTimeCost_Errors(t *testing.T) {
	c := New(nil)

	tests := []struct {
		name   string
		amount models.ParsedAmount
		wage   models.WageProfile
		want   error
	}{
		{"zero salary", amount("10", models.USD), usdWage("0"), ErrDegenerateWage},
		{"negative salary", amount("10", models.USD), usdWage("-5"), ErrDegenerateWage},
		{"zero days", amount("10", models.USD), models.WageProfile{SalaryAmount: decimal.NewFromInt(1000), SalaryCurrency: models.USD, WorkingHoursPerDay: 8}, ErrDegenerateWage},
		{"zero hours", amount("10", models.USD), models.WageProfile{SalaryAmount: decimal.NewFromInt(1000), SalaryCurrency: models.USD, WorkingDaysPerMonth: 22}, ErrDegenerateWage},
		{"unknown price currency", amount("10", "GBP"), usdWage("1000"), ErrUnknownCurrency},
		{"unknown wage currency", amount("10", models.USD), models.WageProfile{SalaryAmount: decimal.NewFromInt(1000), SalaryCurrency: "JPY", WorkingDaysPerMonth: 22, WorkingHoursPerDay: 8}, ErrUnknownCurrency},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.ToTimeCost(tt.amount, tt.wage)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "ToTimeCost() error = %v, want %v", err, tt.want)
		})
	}
}

func TestToTimeCost_ZeroRateIsUnknown(t *testing.T) {
	c := New(models.RateTable{models.USD: decimal.NewFromInt(1), models.EUR: decimal.Zero})
	_, err := c.ToTimeCost(amount("10", models.EUR), usdWage("1000"))
	assert.ErrorIs(t, err, ErrUnknownCurrency)
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name  string
		hours float64
		want  string
	}{
		{"sub-hour rounds minutes", 0.16, "10m"},
		{"sub-day hours and minutes", 2.4, "2h24m"},
		{"exactly one hour", 1, "1h0m"},
		{"exactly one day", 8, "1d0h"},
		{"day and three quarters", 14, "1d6h"},
		{"several days", 8*3 + 4, "3d4h"},
		{"tiny", 0.001, "0m"},
		{"minutes round up to sixty without carry", 0.9999, "60m"},
		{"hours round up to a full day without carry", 8*2 - 0.2, "1d8h"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDuration(tt.hours, 8))
		})
	}
}

func TestFormatDuration_NonPositiveHoursPerDayFallsBack(t *testing.T) {
	assert.Equal(t, "1d0h", FormatDuration(8, 0))
}

func TestConvert_Pipeline(t *testing.T) {
	c := New(nil)
	wage := usdWage("2200") // 100 USD per day

	tests := []struct {
		text string
		want string
	}{
		{"$30", "2h24m"},
		{"$2", "10m"},
		{"R$ 1.000,00", "2d0h"},
		{"$175.00", "1d6h"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			matches := lexer.FindAll(tt.text)
			require.Len(t, matches, 1)
			_, _, got, err := c.Convert(matches[0], wage)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConvert_ZeroPriceIsNotAPrice(t *testing.T) {
	c := New(nil)
	m := lexer.FindAll("$0.00")[0]
	_, _, _, err := c.Convert(m, usdWage("2200"))
	require.Error(t, err)
}
