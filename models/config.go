// Package models defines data structures for prices, wages and annotation runs.
package models

import "time"

// AnnotateConfig holds runtime configuration for an annotate run.
// All values come from CLI flags, not external config files.
type AnnotateConfig struct {
	Inputs      []string // file paths, "-" for stdin
	URLs        []string // pages to fetch
	Origin      string   // page URL used for whitelist gating of local files
	Output      string   // destination file for a single document, empty for stdout
	OutputDir   string   // destination directory when several documents are annotated
	Format      OutputFormat
	Mode        PresentationMode // empty means "use the stored setting"
	Readable    bool
	Sanitize    bool
	AllDomains  bool // annotate pages outside the whitelist
	WorkerCount int
	MaxAge      time.Duration // fetched pages younger than this are read from the cache
	CacheDir    string
}

// Sources returns the number of documents the run will annotate.
func (c *AnnotateConfig) Sources() int {
	return len(c.Inputs) + len(c.URLs)
}

// OutputFormat selects how an annotated page is written out.
type OutputFormat string

const (
	FormatHTML     OutputFormat = "html"
	FormatMarkdown OutputFormat = "markdown"
	FormatReport   OutputFormat = "report"
)

// ParseOutputFormat maps a flag value to an OutputFormat, defaulting to HTML.
func ParseOutputFormat(s string) (OutputFormat, bool) {
	switch OutputFormat(s) {
	case "", FormatHTML:
		return FormatHTML, true
	case FormatMarkdown, "md":
		return FormatMarkdown, true
	case FormatReport, "yaml":
		return FormatReport, true
	}
	return FormatHTML, false
}

// Extension returns the file extension used when saving documents.
func (f OutputFormat) Extension() string {
	switch f {
	case FormatMarkdown:
		return ".md"
	case FormatReport:
		return ".yaml"
	}
	return ".html"
}
