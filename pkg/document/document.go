// Package document loads HTML pages into node trees and writes annotated trees
// back out as HTML or Markdown.
package document

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// LoadOptions selects the clean-up applied before a page is parsed.
type LoadOptions struct {
	// URL resolves relative links during readability extraction.
	URL string
	// Readable keeps only the main article content.
	Readable bool
	// Sanitize strips scripts, event handlers and other active content.
	Sanitize bool
}

// Load reads a page and returns its document node.
func Load(r io.Reader, opts LoadOptions) (*html.Node, error) {
	if !opts.Readable && !opts.Sanitize {
		return Parse(r)
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	src := string(raw)

	if opts.Readable {
		if src, err = Readable(src, opts.URL); err != nil {
			return nil, err
		}
	}
	if opts.Sanitize {
		src = Sanitize(src)
	}
	return Parse(strings.NewReader(src))
}

// Parse reads HTML into a document node.
func Parse(r io.Reader) (*html.Node, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc.Nodes[0], nil
}

// Render writes the tree below n as HTML.
func Render(w io.Writer, n *html.Node) error {
	if err := html.Render(w, n); err != nil {
		return fmt.Errorf("failed to render HTML: %w", err)
	}
	return nil
}

// RenderString renders n to a string.
func RenderString(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Title returns the trimmed <title> text.
func Title(n *html.Node) string {
	return strings.TrimSpace(goquery.NewDocumentFromNode(n).Find("title").First().Text())
}

// Clone returns a deep copy of the tree below n, detached from any parent.
func Clone(n *html.Node) *html.Node {
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
		Attr:      append([]html.Attribute(nil), n.Attr...),
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.AppendChild(Clone(child))
	}
	return c
}
