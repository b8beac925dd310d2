package annotate

import (
	"github.com/vincent-caetano/how-much/models"
	"github.com/vincent-caetano/how-much/pkg/annotator"
)

const (
	ErrTypeFetch          = "fetch_error"
	ErrTypeRead           = "read_error"
	ErrTypeParse          = "parse_error"
	ErrTypeSettings       = "settings_error"
	ErrTypeNotWhitelisted = "not_whitelisted"
	ErrTypeAnnotate       = "annotate_error"
	ErrTypeRender         = "render_error"
	ErrTypeWrite          = "write_error"
)

// Job is one document to annotate: a local file or a page to fetch.
type Job struct {
	Index int
	Input string // file path, "-" for stdin
	URL   string
}

// Source names the document for logs and reports.
func (j Job) Source() string {
	if j.URL != "" {
		return j.URL
	}
	if j.Input == "-" {
		return "stdin"
	}
	return j.Input
}

// Options apply to every job of a run.
type Options struct {
	Origin     string // page URL for local documents
	Format     models.OutputFormat
	Mode       models.PresentationMode
	Readable   bool
	Sanitize   bool
	AllDomains bool
	Append     [][]byte // fragments inserted into the body after the first pass
}

// Result holds the outcome of a processed job.
type Result struct {
	Job         Job
	Domain      string
	Title       string
	Mode        models.PresentationMode
	Wage        models.WageProfile
	Output      []byte
	OutputPath  string
	Annotations annotator.Result
	Events      int
	RunID       int64
	Error       error
	ErrorType   string
}

// Skipped reports whether the page was left alone because of the whitelist.
func (r Result) Skipped() bool {
	return r.ErrorType == ErrTypeNotWhitelisted
}

// Failed reports whether the job ended in an error other than a skip.
func (r Result) Failed() bool {
	return r.Error != nil && !r.Skipped()
}
