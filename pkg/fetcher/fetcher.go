// Package fetcher downloads pages to annotate, decoding them to UTF-8.
package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/vincent-caetano/how-much/pkg/caching"
)

// MaxBodyBytes caps a single download.
const MaxBodyBytes = 10 << 20

type Fetcher struct {
	client *http.Client
	ua     string
	cache  *caching.Cache
	logger *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithClient sets a custom HTTP client.
func WithClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) { f.ua = ua }
}

// WithCache serves fresh pages from c and stores new downloads in it.
func WithCache(c *caching.Cache) Option {
	return func(f *Fetcher) { f.cache = c }
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(f *Fetcher) { f.logger = l }
}

func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		client: &http.Client{Timeout: 30 * time.Second},
		ua:     "Mozilla/5.0 (compatible; how-much/1.0)",
		logger: slog.Default(),
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Page is a downloaded document.
type Page struct {
	URL       string
	Body      []byte // UTF-8
	FromCache bool
}

// Fetch returns the page at url as UTF-8, from the cache when it is fresh.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Page, error) {
	if f.cache != nil {
		if body, ok := f.cache.Get(url); ok {
			f.logger.Debug("cache hit", "url", url, "size", len(body))
			return &Page{URL: url, Body: body, FromCache: true}, nil
		}
	}

	body, err := f.GetHtmlBytes(ctx, url)
	if err != nil {
		return nil, err
	}

	if f.cache != nil {
		if err := f.cache.Set(url, body); err != nil {
			f.logger.Warn("failed to cache page", "url", url, "error", err)
		}
	}
	return &Page{URL: url, Body: body}, nil
}

// GetHtmlBytes downloads url and decodes the body to UTF-8 using the
// Content-Type header and any <meta charset> in the document.
func (f *Fetcher) GetHtmlBytes(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.ua)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch HTML, status code: %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	utf8Body, err := decode(raw, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, err
	}

	f.logger.Debug("fetched", "url", url, "status", resp.StatusCode, "size", len(utf8Body))
	return utf8Body, nil
}

func decode(raw []byte, contentType string) ([]byte, error) {
	r, err := charset.NewReader(bytes.NewReader(raw), contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to detect charset: %w", err)
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode body: %w", err)
	}
	return out, nil
}
