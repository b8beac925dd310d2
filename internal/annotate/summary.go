package annotate

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/vincent-caetano/how-much/internal/common"
	"github.com/vincent-caetano/how-much/pkg/report"
)

// BuildPageReport converts a Result into its report entry.
func BuildPageReport(r Result) report.PageReport {
	pr := report.PageReport{
		Source:      r.Job.Source(),
		Domain:      r.Domain,
		Title:       r.Title,
		Mode:        string(r.Mode),
		OutputPath:  r.OutputPath,
		SizeBytes:   int64(len(r.Output)),
		Found:       r.Annotations.Found,
		Converted:   r.Annotations.Annotated,
		Unconverted: r.Annotations.Failed,
		Prices:      r.Annotations.Annotations,
		Failures:    r.Annotations.Failures,
	}
	switch {
	case r.Skipped():
		pr.Status = report.StatusSkipped
		pr.ErrorType = r.ErrorType
	case r.Error != nil:
		pr.Status = report.StatusFailed
		pr.ErrorType = r.ErrorType
		pr.ErrorMessage = r.Error.Error()
	default:
		pr.Status = report.StatusAnnotated
	}
	return pr
}

// outputName builds "<domain-or-file>-<hash8><ext>" for a saved document.
func outputName(r Result, ext string) string {
	base := r.Domain
	if base == "" {
		base = strings.TrimSuffix(filepath.Base(r.Job.Source()), filepath.Ext(r.Job.Source()))
	}
	base = strings.NewReplacer("/", "_", ":", "_", " ", "_").Replace(base)
	if base == "" || base == "." {
		base = "document"
	}
	return fmt.Sprintf("%s-%s%s", base, common.ContentHash([]byte(r.Job.Source()))[:8], ext)
}

// failedResults returns the results that ended in an error other than a skip.
func failedResults(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if r.Failed() {
			failed = append(failed, r)
		}
	}
	return failed
}

// printSummary writes a short human readable recap of a run.
func printSummary(w io.Writer, rep report.Report, elapsed time.Duration) {
	fmt.Fprintf(w, "Annotated %d/%d documents (%d skipped, %d failed) in %.2fs\n",
		rep.Annotated, rep.TotalPages, rep.Skipped, rep.Failed, elapsed.Seconds())
	fmt.Fprintf(w, "Prices converted: %d at %s/month (%s)\n", rep.TotalPrices, rep.Wage.Salary, rep.Wage.Currency)
	for _, p := range rep.Pages {
		switch p.Status {
		case report.StatusFailed:
			fmt.Fprintf(w, "  x %s [%s] %s\n", p.Source, p.ErrorType, p.ErrorMessage)
		case report.StatusSkipped:
			fmt.Fprintf(w, "  - %s (%s not whitelisted)\n", p.Source, p.Domain)
		default:
			line := fmt.Sprintf("  + %s: %d/%d prices", p.Source, p.Converted, p.Found)
			if p.OutputPath != "" {
				line += " -> " + p.OutputPath
			}
			fmt.Fprintln(w, line)
		}
	}
	if rep.Skipped > 0 {
		fmt.Fprintln(w, "\nTip: add a domain with `how-much whitelist add <domain>` or pass --all-domains")
	}
}
