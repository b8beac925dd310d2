package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrencyInfo_Format(t *testing.T) {
	tests := []struct {
		cur  CurrencyCode
		in   string
		want string
	}{
		{USD, "1256.67", "1,256.67"},
		{USD, "3000", "3,000"},
		{USD, "999", "999"},
		{USD, "1234567.5", "1,234,567.50"},
		{EUR, "2750.25", "2.750,25"},
		{BRL, "1500", "1.500"},
		{BRL, "-1500.5", "-1.500,50"},
	}
	for _, tt := range tests {
		t.Run(string(tt.cur)+" "+tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cur.Info().Format(decimal.RequireFromString(tt.in)))
		})
	}
}

func TestParseCurrency(t *testing.T) {
	tests := []struct {
		in      string
		want    CurrencyCode
		wantErr bool
	}{
		{"USD", USD, false},
		{" eur ", EUR, false},
		{"brl", BRL, false},
		{"JPY", "", true},
		{"dollars", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCurrency(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedCurrency)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCurrencyCode_InfoFallsBackToUSD(t *testing.T) {
	assert.Equal(t, USD, CurrencyCode("JPY").Info().Code)
	assert.False(t, EUR.Info().USStyle())
	assert.True(t, USD.Info().USStyle())
}

func TestParsePresentationMode(t *testing.T) {
	for _, m := range Modes {
		got, ok := ParsePresentationMode(" " + string(m) + " ")
		assert.True(t, ok)
		assert.Equal(t, m, got)
	}
	got, ok := ParsePresentationMode("huge")
	assert.False(t, ok)
	assert.Equal(t, ModeDefault, got)
}

func TestResolveMode(t *testing.T) {
	assert.Equal(t, ModeCompact, ResolveMode(ModeCompact, ModeComfortable))
	assert.Equal(t, ModeComfortable, ResolveMode("", ModeComfortable))
	assert.Equal(t, ModeDefault, ResolveMode("", ""))
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		in   string
		want OutputFormat
		ok   bool
	}{
		{"", FormatHTML, true},
		{"html", FormatHTML, true},
		{"md", FormatMarkdown, true},
		{"markdown", FormatMarkdown, true},
		{"yaml", FormatReport, true},
		{"pdf", FormatHTML, false},
	}
	for _, tt := range tests {
		got, ok := ParseOutputFormat(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}
	assert.Equal(t, ".md", FormatMarkdown.Extension())
}

func TestWageProfile_WithDefaults(t *testing.T) {
	w := WageProfile{SalaryAmount: decimal.NewFromInt(100)}.WithDefaults()
	assert.Equal(t, USD, w.SalaryCurrency)
	assert.Equal(t, DefaultWorkingDaysPerMonth, w.WorkingDaysPerMonth)
	assert.Equal(t, DefaultWorkingHoursPerDay, w.WorkingHoursPerDay)
}
