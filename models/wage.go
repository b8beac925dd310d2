package models

import "github.com/shopspring/decimal"

const (
	DefaultWorkingDaysPerMonth = 22
	DefaultWorkingHoursPerDay  = 8
)

// USMonthlyMinimumWage is $7.25/hour * 40 hours/week * 4.33 weeks/month.
var USMonthlyMinimumWage = decimal.RequireFromString("1256.67")

// WageProfile is an immutable snapshot of the viewer's earnings used to turn a
// price into working time. It is passed by value to every conversion.
type WageProfile struct {
	SalaryAmount        decimal.Decimal `yaml:"salary_amount"`
	SalaryCurrency      CurrencyCode    `yaml:"salary_currency"`
	WorkingDaysPerMonth int             `yaml:"working_days_per_month"`
	WorkingHoursPerDay  int             `yaml:"working_hours_per_day"`
}

// DefaultWageProfile is used until the user stores their own salary.
func DefaultWageProfile() WageProfile {
	return WageProfile{
		SalaryAmount:        USMonthlyMinimumWage,
		SalaryCurrency:      USD,
		WorkingDaysPerMonth: DefaultWorkingDaysPerMonth,
		WorkingHoursPerDay:  DefaultWorkingHoursPerDay,
	}
}

// WithDefaults fills zero work-basis fields.
func (w WageProfile) WithDefaults() WageProfile {
	if w.WorkingDaysPerMonth == 0 {
		w.WorkingDaysPerMonth = DefaultWorkingDaysPerMonth
	}
	if w.WorkingHoursPerDay == 0 {
		w.WorkingHoursPerDay = DefaultWorkingHoursPerDay
	}
	if w.SalaryCurrency == "" {
		w.SalaryCurrency = USD
	}
	return w
}
