// Package page owns one document while it is being annotated. Changes to the
// document and to the user's settings arrive as events on a FIFO queue which
// is drained by the goroutine that owns the Page.
package page

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/vincent-caetano/how-much/models"
	"github.com/vincent-caetano/how-much/pkg/annotator"
	"github.com/vincent-caetano/how-much/pkg/converter"
	"github.com/vincent-caetano/how-much/pkg/settings"
	"github.com/vincent-caetano/how-much/pkg/whitelist"
)

// ErrNotWhitelisted is returned by Open for pages outside the whitelist.
var ErrNotWhitelisted = errors.New("domain not whitelisted")

// EventKind identifies what happened.
type EventKind int

const (
	// SubtreeInserted means Node was added to the document.
	SubtreeInserted EventKind = iota
	// SettingsChanged means a setting that changes rendered costs was stored.
	SettingsChanged
)

func (k EventKind) String() string {
	switch k {
	case SubtreeInserted:
		return "subtree_inserted"
	case SettingsChanged:
		return "settings_changed"
	}
	return fmt.Sprintf("event(%d)", int(k))
}

// Event is one queued change.
type Event struct {
	Kind   EventKind
	Node   *html.Node
	Change settings.Change
}

// Options configures Open.
type Options struct {
	Converter *converter.Converter
	Logger    *slog.Logger
	// Mode overrides the stored presentation mode when set.
	Mode models.PresentationMode
	// SkipWhitelist annotates pages regardless of their domain.
	SkipWhitelist bool
}

// Page is the owning context of one document. Only the owning goroutine may
// call Start, Insert, Drain and Refresh; settings notifications may arrive
// from any goroutine.
type Page struct {
	root     *html.Node
	body     *html.Node
	url      string
	domain   string
	source   settings.Source
	override models.PresentationMode
	logger   *slog.Logger

	annotator *annotator.Annotator
	snapshot  settings.Snapshot
	total     annotator.Result
	processed int
	resets    int

	mu     sync.Mutex
	queue  []Event
	closed bool

	unsubscribe func()
}

// Open loads the settings once, checks the whitelist for pageURL and
// subscribes to settings changes. An empty pageURL skips the whitelist check.
func Open(ctx context.Context, doc *html.Node, pageURL string, source settings.Source, opts Options) (*Page, error) {
	if doc == nil {
		return nil, errors.New("page: nil document")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	snap, err := source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	domain := ""
	if pageURL != "" {
		domain = whitelist.DomainFromURL(pageURL)
		if !opts.SkipWhitelist && (snap.Whitelist == nil || !snap.Whitelist.IsWhitelisted(domain)) {
			opts.Logger.Info("domain not whitelisted, skipping", "domain", domain, "url", pageURL)
			return nil, fmt.Errorf("%w: %s", ErrNotWhitelisted, domain)
		}
	}

	p := &Page{
		root:     doc,
		body:     scanRoot(doc),
		url:      pageURL,
		domain:   domain,
		source:   source,
		override: opts.Mode,
		logger:   opts.Logger.With("domain", domain),
		snapshot: snap,
	}
	p.annotator = annotator.New(annotator.Options{
		Converter: opts.Converter,
		Wage:      snap.Wage,
		Mode:      models.ResolveMode(opts.Mode, snap.Mode),
		Logger:    p.logger,
	})
	p.unsubscribe = source.Subscribe(p.onSettingsChange)

	return p, nil
}

// scanRoot returns the body of doc, or doc itself for fragments without one.
func scanRoot(doc *html.Node) *html.Node {
	if body := goquery.NewDocumentFromNode(doc).Find("body").First(); body.Length() > 0 {
		return body.Get(0)
	}
	return doc
}

func (p *Page) onSettingsChange(c settings.Change) {
	if !c.AffectsAnnotation() {
		return
	}
	p.enqueue(Event{Kind: SettingsChanged, Change: c})
}

func (p *Page) enqueue(ev Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.queue = append(p.queue, ev)
}

// popSettings drops the SettingsChanged events at the head of the queue and
// returns how many it dropped.
func (p *Page) popSettings() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for n < len(p.queue) && p.queue[n].Kind == SettingsChanged {
		p.queue[n] = Event{}
		n++
	}
	p.queue = p.queue[n:]
	return n
}

func (p *Page) pop() (Event, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.queue) == 0 {
		return Event{}, false
	}
	ev := p.queue[0]
	p.queue[0] = Event{}
	p.queue = p.queue[1:]
	return ev, true
}

// Start runs the initial pass over the document body.
func (p *Page) Start() annotator.Result {
	res := p.annotator.Scan(p.body)
	p.total.Merge(res)
	p.logger.Debug("initial scan done", "found", res.Found, "annotated", res.Annotated, "failed", res.Failed)
	return res
}

// Insert appends child to parent and queues it for scanning, the way new
// content arrives on an infinitely scrolling page.
func (p *Page) Insert(parent, child *html.Node) {
	if child.Parent != nil {
		child.Parent.RemoveChild(child)
	}
	parent.AppendChild(child)
	p.enqueue(Event{Kind: SubtreeInserted, Node: child})
}

// Pending returns the number of queued events.
func (p *Page) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

// Drain handles queued events in arrival order until the queue is empty.
// Events queued while draining are handled in the same call. A run of
// consecutive settings changes is handled with a single rescan. On
// cancellation the remaining events stay queued.
func (p *Page) Drain(ctx context.Context) (annotator.Result, error) {
	var res annotator.Result
	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		ev, ok := p.pop()
		if !ok {
			return res, nil
		}
		if ev.Kind == SettingsChanged {
			p.processed += p.popSettings()
		}

		pass, err := p.handle(ctx, ev)
		if err != nil {
			return res, err
		}
		res.Merge(pass)
		p.processed++
	}
}

func (p *Page) handle(ctx context.Context, ev Event) (annotator.Result, error) {
	switch ev.Kind {
	case SubtreeInserted:
		if ev.Node == nil || ev.Node.Type != html.ElementNode {
			return annotator.Result{}, nil
		}
		res := p.annotator.Scan(ev.Node)
		p.total.Merge(res)
		return res, nil

	case SettingsChanged:
		if err := p.Refresh(ctx); err != nil {
			return annotator.Result{}, err
		}
		res := p.annotator.ResetAndRescan(p.body)
		p.total = res
		p.resets++
		p.logger.Info("annotations refreshed", "key", ev.Change.Key, "annotated", res.Annotated)
		return res, nil
	}
	p.logger.Warn("unknown event", "kind", ev.Kind)
	return annotator.Result{}, nil
}

// Refresh re-reads the settings and reconfigures the annotator. The
// document is not touched.
func (p *Page) Refresh(ctx context.Context) error {
	snap, err := p.source.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to reload settings: %w", err)
	}
	p.snapshot = snap
	p.annotator.Configure(snap.Wage, models.ResolveMode(p.override, snap.Mode))
	return nil
}

// Close stops listening for settings changes and drops queued events.
func (p *Page) Close() {
	p.mu.Lock()
	p.closed = true
	p.queue = nil
	p.mu.Unlock()
	if p.unsubscribe != nil {
		p.unsubscribe()
	}
}

// Root returns the document.
func (p *Page) Root() *html.Node { return p.root }

// URL returns the page URL given to Open.
func (p *Page) URL() string { return p.url }

// Domain returns the normalized domain of the page, empty for local documents.
func (p *Page) Domain() string { return p.domain }

// Snapshot returns the settings currently applied.
func (p *Page) Snapshot() settings.Snapshot { return p.snapshot }

// Mode returns the presentation mode currently applied.
func (p *Page) Mode() models.PresentationMode { return p.annotator.Mode() }

// Result returns the annotations currently in the document. A settings
// change replaces it with the result of the rescan.
func (p *Page) Result() annotator.Result { return p.total }

// Processed returns the number of events handled so far, merged settings
// changes included.
func (p *Page) Processed() int { return p.processed }

// Resets returns how many times the annotations were reset and rescanned.
func (p *Page) Resets() int { return p.resets }
