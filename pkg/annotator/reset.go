package annotator

import (
	"golang.org/x/net/html"

	"github.com/vincent-caetano/how-much/models"
)

// Reset undoes every annotation below root: badges are removed, triggers and
// compact badges turn back into their original price text, split text nodes
// are merged and all markers are cleared. The tooltip script is dropped from
// the document unless the annotator is in comfortable mode. It returns the
// number of rendered units removed.
func (a *Annotator) Reset(root *html.Node) int {
	if root == nil {
		return 0
	}

	var units, marked []*html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if hasClass(n, BadgeClass) || hasClass(n, TriggerClass) {
				units = append(units, n)
				return
			}
			if hasAttr(n, MarkerAttr) {
				marked = append(marked, n)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	touched := make(map[*html.Node]struct{})
	for _, u := range units {
		parent := u.Parent
		if parent == nil {
			continue
		}
		if hasClass(u, TriggerClass) || hasClass(u, CompactClass) {
			price, ok := attr(u, PriceAttr)
			if !ok {
				price = textContent(u)
			}
			parent.InsertBefore(textNode(price), u)
		}
		parent.RemoveChild(u)
		touched[parent] = struct{}{}
	}
	for p := range touched {
		mergeText(p)
	}
	for _, m := range marked {
		removeAttr(m, MarkerAttr)
	}
	a.visited = make(map[*html.Node]struct{})
	if a.mode != models.ModeComfortable {
		removeAsset(root, ScriptID)
	}

	return len(units)
}

// ResetAndRescan re-renders the whole tree, typically after the wage,
// currency or presentation mode changed.
func (a *Annotator) ResetAndRescan(root *html.Node) Result {
	removed := a.Reset(root)
	a.logger.Debug("annotations reset", "removed", removed)
	return a.Scan(root)
}

// mergeText joins adjacent text children of n into one node.
func mergeText(n *html.Node) {
	c := n.FirstChild
	for c != nil {
		next := c.NextSibling
		if c.Type == html.TextNode && next != nil && next.Type == html.TextNode {
			c.Data += next.Data
			n.RemoveChild(next)
			continue
		}
		c = next
	}
}
