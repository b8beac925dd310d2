package annotator

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/vincent-caetano/how-much/models"
)

// render builds the nodes that replace one raw price for the current mode.
func (a *Annotator) render(raw, label string) []*html.Node {
	switch a.mode {
	case models.ModeCompact:
		badge := span(label, BadgeClass+" "+CompactClass)
		badge.Attr = append(badge.Attr, html.Attribute{Key: PriceAttr, Val: raw})
		return []*html.Node{badge}

	case models.ModeComfortable:
		trigger := span(raw, TriggerClass)
		trigger.Attr = append(trigger.Attr,
			html.Attribute{Key: CostAttr, Val: label},
			html.Attribute{Key: PriceAttr, Val: raw},
			html.Attribute{Key: "tabindex", Val: "0"},
		)
		return []*html.Node{trigger}

	default:
		badge := span(label, BadgeClass)
		badge.Attr = append(badge.Attr, html.Attribute{Key: PriceAttr, Val: raw})
		return []*html.Node{textNode(raw), badge}
	}
}

func textNode(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func span(text, class string) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     "span",
		DataAtom: atom.Span,
		Attr:     []html.Attribute{{Key: "class", Val: class}},
	}
	n.AppendChild(textNode(text))
	return n
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func hasAttr(n *html.Node, key string) bool {
	_, ok := attr(n, key)
	return ok
}

func removeAttr(n *html.Node, key string) {
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Key != key {
			kept = append(kept, a)
		}
	}
	n.Attr = kept
}

func hasClass(n *html.Node, class string) bool {
	v, ok := attr(n, "class")
	if !ok {
		return false
	}
	for _, c := range strings.Fields(v) {
		if c == class {
			return true
		}
	}
	return false
}

// textContent concatenates the text below n.
func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
