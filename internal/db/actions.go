package db

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"

	"github.com/vincent-caetano/how-much/internal/common"
	"github.com/vincent-caetano/how-much/models"
	"github.com/vincent-caetano/how-much/pkg/whitelist"
)

// RunsAction lists recent annotation runs.
func RunsAction(c *cli.Context) error {
	database, err := common.OpenDB(c)
	if err != nil {
		return err
	}
	defer database.Close()

	domain := c.String("domain")
	if domain != "" {
		domain = whitelist.Normalize(domain)
	}
	runs, err := database.ListRuns(domain, c.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	w := c.App.Writer
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs found")
		return nil
	}

	fmt.Fprintf(w, "%-6s %-20s %-24s %-12s %-6s %-10s %-7s %s\n",
		"ID", "Created", "Domain", "Mode", "Found", "Annotated", "Failed", "Source")
	fmt.Fprintln(w, strings.Repeat("-", 120))

	for _, r := range runs {
		domain := r.Domain
		if domain == "" {
			domain = "(local)"
		}
		fmt.Fprintf(w, "%-6d %-20s %-24s %-12s %-6d %-10d %-7d %s\n",
			r.RunID,
			r.CreatedAt.Format("2006-01-02 15:04:05"),
			domain,
			r.Mode,
			r.FoundCount,
			r.AnnotatedCount,
			r.FailedCount,
			r.Source,
		)
	}

	fmt.Fprintf(w, "\nTotal: %d runs\n", len(runs))
	fmt.Fprintf(w, "\nTip: Use 'how-much runs show <id>' to see details\n")
	return nil
}

// RunAction shows details for a specific run
func RunAction(c *cli.Context) error {
	database, err := common.OpenDB(c)
	if err != nil {
		return err
	}
	defer database.Close()

	runID, err := GetRunIDOrLatest(c, database)
	if err != nil {
		return err
	}

	r, err := database.GetRun(runID)
	if err != nil {
		return err
	}

	salary := r.Salary
	if code, err := models.ParseCurrency(r.Currency); err == nil {
		if amount, err := decimal.NewFromString(r.Salary); err == nil {
			info := code.Info()
			salary = info.Symbol + " " + info.Format(amount)
		}
	}

	w := c.App.Writer
	fmt.Fprintf(w, "Run %d\n", r.RunID)
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintf(w, "Created:     %s\n", r.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Source:      %s\n", r.Source)
	if r.Domain != "" {
		fmt.Fprintf(w, "Domain:      %s\n", r.Domain)
	}
	fmt.Fprintf(w, "Mode:        %s\n", r.Mode)
	fmt.Fprintf(w, "Prices:      %d found (%d annotated, %d failed)\n",
		r.FoundCount, r.AnnotatedCount, r.FailedCount)
	fmt.Fprintf(w, "Salary:      %s/month\n", salary)
	return nil
}
