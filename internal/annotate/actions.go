package annotate

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/vincent-caetano/how-much/internal/common"
	"github.com/vincent-caetano/how-much/models"
	"github.com/vincent-caetano/how-much/pkg/caching"
	"github.com/vincent-caetano/how-much/pkg/converter"
	"github.com/vincent-caetano/how-much/pkg/db"
	"github.com/vincent-caetano/how-much/pkg/fetcher"
	"github.com/vincent-caetano/how-much/pkg/report"
	"github.com/vincent-caetano/how-much/pkg/settings"
	"github.com/vincent-caetano/how-much/pkg/storage"
)

// DefaultOutputDir receives annotated documents when several are processed.
const DefaultOutputDir = "how-much-output"

// Flags returns the flags of the annotate command.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "urls", Usage: "Comma-separated list of pages to fetch and annotate"},
		&cli.StringFlag{Name: "origin", Usage: "Page URL of local documents, used for the whitelist check"},
		&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Write a single annotated document to this file instead of stdout"},
		&cli.StringFlag{Name: "output-dir", Usage: "Directory for annotated documents when several are processed"},
		&cli.StringFlag{Name: "format", Value: "html", Usage: "Output format: html, markdown, report"},
		&cli.StringFlag{Name: "mode", Usage: "Presentation mode: default, compact, comfortable (overrides the stored setting)"},
		&cli.StringSliceFlag{Name: "append", Usage: "HTML fragment file inserted into the body after the first pass (repeatable)"},
		&cli.BoolFlag{Name: "readable", Usage: "Reduce pages to their main article before annotating"},
		&cli.BoolFlag{Name: "sanitize", Usage: "Strip scripts and unsafe markup before annotating"},
		&cli.BoolFlag{Name: "all-domains", Usage: "Annotate pages outside the whitelist"},
		&cli.IntFlag{Name: "workers", Value: 4, Usage: "Number of concurrent workers"},
		&cli.StringFlag{Name: "max-age", Value: "1h", Usage: "Reuse cached pages younger than this (0 disables the cache)"},
		&cli.StringFlag{Name: "cache-dir", Usage: "Directory for fetched pages (empty disables the cache)"},
	}
}

func configFromFlags(c *cli.Context) (*models.AnnotateConfig, error) {
	config := &models.AnnotateConfig{
		Inputs:      c.Args().Slice(),
		Origin:      c.String("origin"),
		Output:      c.String("output"),
		OutputDir:   c.String("output-dir"),
		Readable:    c.Bool("readable"),
		Sanitize:    c.Bool("sanitize"),
		AllDomains:  c.Bool("all-domains"),
		WorkerCount: c.Int("workers"),
		CacheDir:    c.String("cache-dir"),
	}

	format, ok := models.ParseOutputFormat(c.String("format"))
	if !ok {
		return nil, fmt.Errorf("unknown format %q (want html, markdown or report)", c.String("format"))
	}
	config.Format = format

	if m := c.String("mode"); m != "" {
		mode, ok := models.ParsePresentationMode(m)
		if !ok {
			return nil, fmt.Errorf("unknown mode %q (want default, compact or comfortable)", m)
		}
		config.Mode = mode
	}

	maxAge, err := time.ParseDuration(c.String("max-age"))
	if err != nil {
		return nil, fmt.Errorf("invalid max-age duration: %w", err)
	}
	config.MaxAge = maxAge

	if config.Origin != "" {
		config.Origin = common.SanitizeURL(config.Origin)
		if err := common.ValidateURL(config.Origin); err != nil {
			return nil, fmt.Errorf("invalid origin: %w", err)
		}
	}

	if c.IsSet("urls") {
		urls, invalid := common.SanitizeAndValidateURLs(common.SplitList(c.String("urls")))
		if len(invalid) > 0 {
			return nil, fmt.Errorf("%d URL(s) are malformed: %v", len(invalid), invalid)
		}
		config.URLs = urls
	}

	if config.Sources() == 0 {
		return nil, errors.New("no documents provided")
	}
	return config, nil
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, `  how-much annotate page.html                                  # Annotate a local file`)
	fmt.Fprintln(w, `  cat page.html | how-much annotate -                          # Read from stdin`)
	fmt.Fprintln(w, `  how-much annotate --urls "https://www.amazon.com/dp/B0..."  # Fetch and annotate`)
	fmt.Fprintln(w, `  how-much annotate --origin https://ebay.com --format markdown saved.html`)
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Need help? Run: how-much annotate --help")
}

// AnnotateAction annotates local documents and fetched pages.
func AnnotateAction(c *cli.Context) error {
	logger := common.NewLogger(c)
	startTime := time.Now()

	config, err := configFromFlags(c)
	if err != nil {
		fmt.Fprintf(c.App.ErrWriter, "Error: %v\n", err)
		usage(c.App.ErrWriter)
		return cli.Exit("", 1)
	}

	store := &storage.Storage{}
	var fragments [][]byte
	for _, path := range c.StringSlice("append") {
		frag, err := store.ReadFile(path)
		if err != nil {
			return cli.Exit(fmt.Sprintf("Error: failed to read fragment: %v", err), 1)
		}
		fragments = append(fragments, frag)
	}

	database, err := db.Open(c.String("db"))
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return cli.Exit("", 2)
	}
	defer database.Close()

	var cache *caching.Cache
	if config.CacheDir != "" && config.MaxAge > 0 {
		cache, err = caching.NewCache(config.CacheDir, config.MaxAge)
		if err != nil {
			logger.Error("failed to initialize cache", "error", err)
			return cli.Exit("", 2)
		}
		if n, err := cache.Purge(); err != nil {
			logger.Warn("failed to purge cache", "error", err)
		} else if n > 0 {
			logger.Debug("purged expired pages", "removed", n)
		}
	}

	deps, settingsStore := NewDeps(database, logger, cache)
	deps.Storage = store
	snap, err := settingsStore.Load(c.Context)
	if err != nil {
		logger.Error("failed to load settings", "error", err)
		return cli.Exit("", 2)
	}

	opts := Options{
		Origin:     config.Origin,
		Format:     config.Format,
		Mode:       config.Mode,
		Readable:   config.Readable,
		Sanitize:   config.Sanitize,
		AllDomains: config.AllDomains,
		Append:     fragments,
	}

	results := run(c.Context, logger, deps, buildJobs(config), opts, config.WorkerCount)

	if err := writeOutputs(c.App.Writer, store, config, results, snap); err != nil {
		logger.Error("failed to write output", "error", err)
		return cli.Exit("", 2)
	}

	if !c.Bool("quiet") {
		rep := report.Generate(pageReports(results), snap.Wage, time.Now())
		printSummary(c.App.ErrWriter, rep, time.Since(startTime))
	}

	failed := len(failedResults(results))
	if failed > 0 && failed == len(results) {
		return cli.Exit("", 2)
	}
	if failed > 0 {
		return cli.Exit("", 1)
	}
	return nil
}

func buildJobs(config *models.AnnotateConfig) []Job {
	jobs := make([]Job, 0, config.Sources())
	for _, in := range config.Inputs {
		jobs = append(jobs, Job{Index: len(jobs), Input: in})
	}
	for _, u := range config.URLs {
		jobs = append(jobs, Job{Index: len(jobs), URL: u})
	}
	return jobs
}

func pageReports(results []Result) []report.PageReport {
	pages := make([]report.PageReport, 0, len(results))
	for _, r := range results {
		pages = append(pages, BuildPageReport(r))
	}
	return pages
}

// writeOutputs sends a single document to --output or stdout. Several
// documents, or an explicit --output-dir, are saved to files and the YAML
// report is printed instead.
func writeOutputs(stdout io.Writer, store *storage.Storage, config *models.AnnotateConfig, results []Result, snap settings.Snapshot) error {
	if config.Format == models.FormatReport {
		return writeReport(stdout, store, config.Output, results, snap)
	}

	if len(results) == 1 && config.OutputDir == "" {
		r := &results[0]
		if r.Error != nil {
			return nil
		}
		if config.Output != "" {
			if err := store.SaveFile(config.Output, r.Output); err != nil {
				return fmt.Errorf("failed to save %s: %w", config.Output, err)
			}
			r.OutputPath = config.Output
			return nil
		}
		_, err := stdout.Write(r.Output)
		return err
	}

	dir := config.OutputDir
	if dir == "" {
		dir = DefaultOutputDir
	}
	for i := range results {
		r := &results[i]
		if r.Error != nil {
			continue
		}
		path := filepath.Join(dir, outputName(*r, config.Format.Extension()))
		if err := store.SaveFile(path, r.Output); err != nil {
			r.Error, r.ErrorType = err, ErrTypeWrite
			continue
		}
		r.OutputPath = path
	}
	return writeReport(stdout, store, "", results, snap)
}

func writeReport(stdout io.Writer, store *storage.Storage, path string, results []Result, snap settings.Snapshot) error {
	rep := report.Generate(pageReports(results), snap.Wage, time.Now())
	var buf bytes.Buffer
	if err := rep.Write(&buf); err != nil {
		return err
	}
	if path != "" {
		return store.SaveFile(path, buf.Bytes())
	}
	_, err := stdout.Write(buf.Bytes())
	return err
}

// NewDeps wires the collaborators used outside the annotate command.
func NewDeps(database *db.DB, logger *slog.Logger, cache *caching.Cache) (Deps, *settings.Store) {
	store := settings.NewStore(database, logger)
	fetchOpts := []fetcher.Option{fetcher.WithLogger(logger)}
	if cache != nil {
		fetchOpts = append(fetchOpts, fetcher.WithCache(cache))
	}
	return Deps{
		Source:    store,
		DB:        database,
		Fetcher:   fetcher.NewFetcher(fetchOpts...),
		Converter: converter.New(models.DefaultRates()),
		Storage:   &storage.Storage{},
		Logger:    logger,
	}, store
}
