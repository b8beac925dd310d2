// Package converter turns a price into working time for a wage profile and
// formats that duration for display.
package converter

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/vincent-caetano/how-much/models"
	"github.com/vincent-caetano/how-much/pkg/normalizer"
)

var (
	// ErrUnknownCurrency is returned when a currency has no rate in the table.
	ErrUnknownCurrency = errors.New("unknown currency")
	// ErrDegenerateWage is returned when the wage cannot produce a finite cost.
	ErrDegenerateWage = errors.New("degenerate wage profile")
)

// Converter holds the static exchange-rate table. It carries no wage state;
// the wage snapshot is passed to every call.
type Converter struct {
	rates models.RateTable
}

// New creates a Converter. A nil table means models.DefaultRates.
func New(rates models.RateTable) *Converter {
	if rates == nil {
		rates = models.DefaultRates()
	}
	return &Converter{rates: rates}
}

// Rates returns the table the converter was built with.
func (c *Converter) Rates() models.RateTable {
	return c.rates
}

func (c *Converter) toUSD(v decimal.Decimal, cur models.CurrencyCode) (decimal.Decimal, error) {
	rate, ok := c.rates[cur]
	if !ok || rate.Sign() <= 0 {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrUnknownCurrency, cur)
	}
	return v.Div(rate), nil
}

// ToTimeCost computes how many working hours of wage a price costs. Both sides
// are brought to USD first, so any pair of known currencies works.
func (c *Converter) ToTimeCost(amount models.ParsedAmount, wage models.WageProfile) (models.TimeCost, error) {
	if wage.SalaryAmount.Sign() <= 0 || wage.WorkingDaysPerMonth <= 0 || wage.WorkingHoursPerDay <= 0 {
		return models.TimeCost{}, fmt.Errorf("%w: salary=%s days=%d hours=%d",
			ErrDegenerateWage, wage.SalaryAmount, wage.WorkingDaysPerMonth, wage.WorkingHoursPerDay)
	}

	priceUSD, err := c.toUSD(amount.Value, amount.Currency)
	if err != nil {
		return models.TimeCost{}, err
	}
	salaryUSD, err := c.toUSD(wage.SalaryAmount, wage.SalaryCurrency)
	if err != nil {
		return models.TimeCost{}, err
	}

	dailyUSD := salaryUSD.Div(decimal.NewFromInt(int64(wage.WorkingDaysPerMonth)))
	if dailyUSD.Sign() <= 0 {
		return models.TimeCost{}, fmt.Errorf("%w: daily wage rounds to zero", ErrDegenerateWage)
	}

	days, _ := priceUSD.Div(dailyUSD).Float64()
	hours := days * float64(wage.WorkingHoursPerDay)
	if math.IsNaN(hours) || math.IsInf(hours, 0) {
		return models.TimeCost{}, fmt.Errorf("%w: non-finite cost", ErrDegenerateWage)
	}

	return models.TimeCost{TotalHours: hours, Days: days}, nil
}

// Convert runs the whole per-match pipeline: normalize, convert, format.
// It returns the parsed amount alongside the display string for reporting.
func (c *Converter) Convert(m models.PriceMatch, wage models.WageProfile) (models.ParsedAmount, models.TimeCost, string, error) {
	amount, err := normalizer.Normalize(m.RawText, m.DetectedCurrency)
	if err != nil {
		return models.ParsedAmount{}, models.TimeCost{}, "", err
	}
	cost, err := c.ToTimeCost(amount, wage)
	if err != nil {
		return amount, models.TimeCost{}, "", err
	}
	return amount, cost, FormatDuration(cost.TotalHours, wage.WorkingHoursPerDay), nil
}

// roundHalfUp rounds positive values the way shoppers expect: 9.5 -> 10.
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

// FormatDuration renders hours of work as "{m}m", "{h}h{m}m" or "{d}d{h}h",
// depending on whether the cost is below an hour, below a work-day, or more.
// Rounding is not carried, so "60m" and "1d8h" can appear at the boundaries.
func FormatDuration(totalHours float64, hoursPerDay int) string {
	if hoursPerDay <= 0 {
		hoursPerDay = models.DefaultWorkingHoursPerDay
	}
	days := totalHours / float64(hoursPerDay)

	if days < 1 {
		wholeHours := int(math.Floor(totalHours))
		minutes := roundHalfUp(math.Mod(totalHours, 1) * 60)
		if wholeHours == 0 {
			return strconv.Itoa(minutes) + "m"
		}
		return strconv.Itoa(wholeHours) + "h" + strconv.Itoa(minutes) + "m"
	}

	wholeDays := int(math.Floor(days))
	hours := roundHalfUp(math.Mod(days, 1) * float64(hoursPerDay))
	return strconv.Itoa(wholeDays) + "d" + strconv.Itoa(hours) + "h"
}
