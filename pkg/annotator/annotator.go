// Package annotator rewrites the text of a parsed HTML tree so that every
// detected price carries its cost in working time.
//
// An element whose text has been annotated is marked twice: in an in-memory
// side-table keyed by node identity, and with the data-timecost-processed
// attribute so that serialized output stays idempotent when parsed again.
// Nothing below a marked element is scanned until Reset clears the markers.
//
// An Annotator is not safe for concurrent use; one goroutine owns a document.
package annotator

import (
	"errors"
	"log/slog"

	"golang.org/x/net/html"

	"github.com/vincent-caetano/how-much/models"
	"github.com/vincent-caetano/how-much/pkg/converter"
	"github.com/vincent-caetano/how-much/pkg/lexer"
	"github.com/vincent-caetano/how-much/pkg/normalizer"
)

const (
	MarkerAttr   = "data-timecost-processed"
	PriceAttr    = "data-timecost-price"
	CostAttr     = "data-timecost"
	BadgeClass   = "timecost-badge"
	CompactClass = "timecost-badge--compact"
	TriggerClass = "timecost-trigger"
)

// skipTags never hold visible prose.
var skipTags = map[string]struct{}{
	"title":    {},
	"option":   {},
	"script":   {},
	"style":    {},
	"textarea": {},
	"input":    {},
	"noscript": {},
	"template": {},
}

// Options configures an Annotator.
type Options struct {
	Converter *converter.Converter
	Wage      models.WageProfile
	Mode      models.PresentationMode
	Logger    *slog.Logger
}

// Annotator finds prices in text nodes and renders their time cost.
type Annotator struct {
	conv    *converter.Converter
	wage    models.WageProfile
	mode    models.PresentationMode
	logger  *slog.Logger
	visited map[*html.Node]struct{}
}

// Result summarises one pass.
type Result struct {
	Found       int
	Annotated   int
	Failed      int
	Annotations []models.Annotation
	Failures    []models.AnnotationFailure
}

// Merge folds another pass into r.
func (r *Result) Merge(o Result) {
	r.Found += o.Found
	r.Annotated += o.Annotated
	r.Failed += o.Failed
	r.Annotations = append(r.Annotations, o.Annotations...)
	r.Failures = append(r.Failures, o.Failures...)
}

// New creates an Annotator from opts, filling in defaults.
func New(opts Options) *Annotator {
	if opts.Converter == nil {
		opts.Converter = converter.New(nil)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	a := &Annotator{
		conv:    opts.Converter,
		logger:  opts.Logger,
		visited: make(map[*html.Node]struct{}),
	}
	a.Configure(opts.Wage, opts.Mode)
	return a
}

// Configure swaps the wage and mode snapshot. Existing annotations are not
// touched; call ResetAndRescan to re-render them.
func (a *Annotator) Configure(wage models.WageProfile, mode models.PresentationMode) {
	if wage.SalaryAmount.IsZero() && wage.SalaryCurrency == "" {
		wage = models.DefaultWageProfile()
	}
	a.wage = wage.WithDefaults()
	a.mode = models.ResolveMode("", mode)
}

// Mode returns the presentation mode in use.
func (a *Annotator) Mode() models.PresentationMode {
	return a.mode
}

// Wage returns the wage snapshot in use.
func (a *Annotator) Wage() models.WageProfile {
	return a.wage
}

// Scan annotates every eligible text node below root. Calling it again on the
// same or an overlapping subtree changes nothing.
func (a *Annotator) Scan(root *html.Node) Result {
	var res Result
	if root == nil {
		return res
	}

	// Collect first, then mutate, so a pass never walks its own output.
	for _, n := range a.collect(root) {
		a.annotateText(n, &res)
	}
	if res.Annotated > 0 {
		a.injectAssets(root)
	}
	return res
}

// IsMarked reports whether n is an element recorded as fully processed.
func (a *Annotator) IsMarked(n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	if _, ok := a.visited[n]; ok {
		return true
	}
	return hasAttr(n, MarkerAttr)
}

func (a *Annotator) mark(n *html.Node) {
	a.visited[n] = struct{}{}
	if !hasAttr(n, MarkerAttr) {
		n.Attr = append(n.Attr, html.Attribute{Key: MarkerAttr, Val: "true"})
	}
}

func (a *Annotator) excluded(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if _, skip := skipTags[n.Data]; skip {
		return true
	}
	return a.IsMarked(n)
}

// collect returns the text nodes below root that hold at least one price.
func (a *Annotator) collect(root *html.Node) []*html.Node {
	for p := root.Parent; p != nil; p = p.Parent {
		if a.excluded(p) {
			return nil
		}
	}

	var out []*html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if n.Parent != nil && n.Parent.Type == html.ElementNode && lexer.Contains(n.Data) {
				out = append(out, n)
			}
			return
		case html.ElementNode:
			if a.excluded(n) {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return out
}

// annotateText splits one text node into plain spans and rendered prices.
// Matches that fail to convert stay inside the plain spans untouched.
func (a *Annotator) annotateText(n *html.Node, res *Result) {
	text := n.Data
	var seq []*html.Node
	last := 0

	for m := range lexer.FindPrices(text) {
		res.Found++
		amount, cost, label, err := a.conv.Convert(m, a.wage)
		if err != nil {
			res.Failed++
			res.Failures = append(res.Failures, models.AnnotationFailure{Raw: m.RawText, Reason: err.Error()})
			if errors.Is(err, normalizer.ErrNotAPrice) {
				a.logger.Debug("price-shaped text skipped", "raw", m.RawText, "error", err)
			} else {
				a.logger.Warn("price conversion failed", "raw", m.RawText, "error", err)
			}
			continue
		}

		if m.StartOffset > last {
			seq = append(seq, textNode(text[last:m.StartOffset]))
		}
		seq = append(seq, a.render(m.RawText, label)...)
		last = m.End()

		res.Annotated++
		res.Annotations = append(res.Annotations, models.Annotation{
			Raw:      m.RawText,
			Currency: amount.Currency,
			Value:    amount.Value.String(),
			Hours:    cost.TotalHours,
			Cost:     label,
		})
	}
	if len(seq) == 0 {
		return
	}
	if last < len(text) {
		seq = append(seq, textNode(text[last:]))
	}

	parent := n.Parent
	for _, s := range seq {
		parent.InsertBefore(s, n)
	}
	parent.RemoveChild(n)
	a.mark(parent)
}
