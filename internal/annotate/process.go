package annotate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/PuerkitoBio/goquery"

	"github.com/vincent-caetano/how-much/models"
	"github.com/vincent-caetano/how-much/pkg/converter"
	"github.com/vincent-caetano/how-much/pkg/db"
	"github.com/vincent-caetano/how-much/pkg/document"
	"github.com/vincent-caetano/how-much/pkg/fetcher"
	"github.com/vincent-caetano/how-much/pkg/page"
	"github.com/vincent-caetano/how-much/pkg/settings"
	"github.com/vincent-caetano/how-much/pkg/storage"
	"github.com/vincent-caetano/how-much/pkg/whitelist"
)

// Deps are the collaborators shared by every job.
type Deps struct {
	Source    settings.Source
	DB        *db.DB // nil disables run history
	Fetcher   *fetcher.Fetcher
	Converter *converter.Converter
	Storage   *storage.Storage
	Logger    *slog.Logger
}

// Process reads, annotates and renders one document.
func Process(ctx context.Context, deps Deps, job Job, opts Options) Result {
	var raw []byte
	var err error
	if job.URL != "" {
		var fetched *fetcher.Page
		fetched, err = deps.Fetcher.Fetch(ctx, job.URL)
		if err != nil {
			return Result{Job: job, Error: err, ErrorType: ErrTypeFetch}
		}
		raw = fetched.Body
	} else {
		raw, err = deps.Storage.ReadFile(job.Input)
		if err != nil {
			return Result{Job: job, Error: err, ErrorType: ErrTypeRead}
		}
	}
	return ProcessHTML(ctx, deps, job, raw, opts)
}

// ProcessHTML annotates an already loaded document. Pages are checked
// against the whitelist when a page URL is known: the job URL, or the
// Origin option for local documents.
func ProcessHTML(ctx context.Context, deps Deps, job Job, raw []byte, opts Options) Result {
	result := Result{Job: job}
	logger := deps.Logger.With("source", job.Source())

	pageURL := job.URL
	if pageURL == "" {
		pageURL = opts.Origin
	}

	root, err := document.Load(bytes.NewReader(raw), document.LoadOptions{
		URL:      pageURL,
		Readable: opts.Readable,
		Sanitize: opts.Sanitize,
	})
	if err != nil {
		result.Error, result.ErrorType = err, ErrTypeParse
		return result
	}
	result.Title = document.Title(root)

	p, err := page.Open(ctx, root, pageURL, deps.Source, page.Options{
		Converter:     deps.Converter,
		Logger:        logger,
		Mode:          opts.Mode,
		SkipWhitelist: opts.AllDomains,
	})
	if err != nil {
		result.Error = err
		result.ErrorType = ErrTypeSettings
		if errors.Is(err, page.ErrNotWhitelisted) {
			result.ErrorType = ErrTypeNotWhitelisted
			result.Domain = whitelist.DomainFromURL(pageURL)
		}
		return result
	}
	defer p.Close()

	result.Domain = p.Domain()
	p.Start()
	if err := appendFragments(p, opts.Append); err != nil {
		result.Error, result.ErrorType = err, ErrTypeParse
		return result
	}
	if _, err := p.Drain(ctx); err != nil {
		result.Error, result.ErrorType = err, ErrTypeAnnotate
		return result
	}

	result.Mode = p.Mode()
	result.Wage = p.Snapshot().Wage
	result.Annotations = p.Result()
	result.Events = p.Processed()
	logger.Info("document annotated",
		"domain", result.Domain,
		"mode", result.Mode,
		"found", result.Annotations.Found,
		"annotated", result.Annotations.Annotated,
		"failed", result.Annotations.Failed,
		"events", result.Events,
		"resets", p.Resets())

	switch opts.Format {
	case models.FormatMarkdown:
		md, err := document.Markdown(root, pageURL)
		if err != nil {
			result.Error, result.ErrorType = err, ErrTypeRender
			return result
		}
		result.Output = []byte(md)
	case models.FormatReport:
		// Report only
	default:
		out, err := document.RenderString(root)
		if err != nil {
			result.Error, result.ErrorType = err, ErrTypeRender
			return result
		}
		result.Output = []byte(out)
	}

	result.RunID = recordRun(deps, result)
	return result
}

// appendFragments inserts each fragment's nodes at the end of the body, the
// way a paginated listing loads its next page.
func appendFragments(p *page.Page, fragments [][]byte) error {
	if len(fragments) == 0 {
		return nil
	}
	body := goquery.NewDocumentFromNode(p.Root()).Find("body").First()
	if body.Length() == 0 {
		return fmt.Errorf("document has no body to append to")
	}
	ctxNode := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	for i, frag := range fragments {
		nodes, err := html.ParseFragment(bytes.NewReader(frag), ctxNode)
		if err != nil {
			return fmt.Errorf("failed to parse fragment %d: %w", i+1, err)
		}
		for _, n := range nodes {
			p.Insert(body.Nodes[0], n)
		}
	}
	return nil
}

func recordRun(deps Deps, r Result) int64 {
	if deps.DB == nil {
		return 0
	}
	runID, err := deps.DB.InsertRun(db.Run{
		Source:         r.Job.Source(),
		Domain:         r.Domain,
		Mode:           string(r.Mode),
		FoundCount:     r.Annotations.Found,
		AnnotatedCount: r.Annotations.Annotated,
		FailedCount:    r.Annotations.Failed,
		Salary:         r.Wage.SalaryAmount.String(),
		Currency:       string(r.Wage.SalaryCurrency),
	})
	if err != nil {
		deps.Logger.Warn("Failed to record run", "source", r.Job.Source(), "error", err)
		return 0
	}
	return runID
}
