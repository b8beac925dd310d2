// Package report summarises an annotate run as YAML.
package report

import (
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vincent-caetano/how-much/models"
	"github.com/vincent-caetano/how-much/pkg/mapreduce"
)

const (
	StatusAnnotated = "annotated"
	StatusSkipped   = "skipped" // outside the whitelist
	StatusFailed    = "failed"
)

// Report represents the structure of the summary YAML.
type Report struct {
	GeneratedAt string       `yaml:"generated_at"`
	Wage        Wage         `yaml:"wage"`
	TotalPages  int          `yaml:"total_pages"`
	Annotated   int          `yaml:"annotated"`
	Skipped     int          `yaml:"skipped"`
	Failed      int          `yaml:"failed"`
	TotalPrices int          `yaml:"total_prices"`
	Currencies  []string     `yaml:"currencies,omitempty"`  // "USD:12"
	TopDomains  []string     `yaml:"top_domains,omitempty"` // by converted prices
	Pages       []PageReport `yaml:"pages"`
}

// Wage is the wage snapshot the costs were computed with.
type Wage struct {
	Salary              string `yaml:"salary"`
	Currency            string `yaml:"currency"`
	WorkingDaysPerMonth int    `yaml:"working_days_per_month"`
	WorkingHoursPerDay  int    `yaml:"working_hours_per_day"`
}

// PageReport is the outcome for one document.
type PageReport struct {
	Source       string                     `yaml:"source"`
	Domain       string                     `yaml:"domain,omitempty"`
	Title        string                     `yaml:"title,omitempty"`
	Mode         string                     `yaml:"mode,omitempty"`
	Status       string                     `yaml:"status"`
	ErrorType    string                     `yaml:"error_type,omitempty"`
	ErrorMessage string                     `yaml:"error_message,omitempty"`
	OutputPath   string                     `yaml:"output_path,omitempty"`
	SizeBytes    int64                      `yaml:"size_bytes,omitempty"`
	Found        int                        `yaml:"found"`
	Converted    int                        `yaml:"converted"`
	Unconverted  int                        `yaml:"unconverted"`
	Prices       []models.Annotation        `yaml:"prices,omitempty"`
	Failures     []models.AnnotationFailure `yaml:"failures,omitempty"`
}

// Generate aggregates page outcomes into a Report.
func Generate(pages []PageReport, wage models.WageProfile, now time.Time) Report {
	info := wage.SalaryCurrency.Info()
	r := Report{
		GeneratedAt: now.Format(time.RFC3339),
		Wage: Wage{
			Salary:              info.Symbol + " " + info.Format(wage.SalaryAmount),
			Currency:            string(wage.SalaryCurrency),
			WorkingDaysPerMonth: wage.WorkingDaysPerMonth,
			WorkingHoursPerDay:  wage.WorkingHoursPerDay,
		},
		TotalPages: len(pages),
		Pages:      pages,
	}
	currencies := make([]map[string]int, 0, len(pages))
	domains := make(map[string]int)
	for _, p := range pages {
		currencies = append(currencies, mapreduce.MapCurrencies(p.Prices))
		if p.Domain != "" {
			domains[p.Domain] += p.Converted
		}
		switch p.Status {
		case StatusAnnotated:
			r.Annotated++
		case StatusSkipped:
			r.Skipped++
		default:
			r.Failed++
		}
		r.TotalPrices += p.Converted
	}
	r.Currencies = mapreduce.Top(mapreduce.Reduce(currencies), 0)
	r.TopDomains = mapreduce.Top(domains, 10)
	return r
}

// Write encodes r as YAML.
func (r Report) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("error marshalling report: %w", err)
	}
	return enc.Close()
}
