package document

import (
	"fmt"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/vincent-caetano/how-much/pkg/annotator"
)

var mdConverter = converter.NewConverter(
	converter.WithPlugins(
		base.NewBasePlugin(),
		commonmark.NewCommonmarkPlugin(),
		table.NewTablePlugin(),
	),
)

// Markdown converts an annotated document to Markdown. Costs are written in
// parentheses after the price; compact badges keep only the cost. n is not
// modified.
func Markdown(n *html.Node, pageURL string) (string, error) {
	doc := goquery.NewDocumentFromNode(Clone(n))

	doc.Find("#" + annotator.StyleID + ", #" + annotator.ScriptID).Remove()
	doc.Find("." + annotator.TriggerClass).Each(func(_ int, s *goquery.Selection) {
		label := s.AttrOr(annotator.CostAttr, "")
		s.ReplaceWithNodes(text(s.Text() + " (" + label + ")"))
	})
	doc.Find("." + annotator.BadgeClass).Each(func(_ int, s *goquery.Selection) {
		if s.HasClass(annotator.CompactClass) {
			s.ReplaceWithNodes(text(s.Text()))
			return
		}
		s.ReplaceWithNodes(text(" (" + s.Text() + ")"))
	})

	var opts []converter.ConvertOptionFunc
	if pageURL != "" {
		opts = append(opts, converter.WithDomain(pageURL))
	}
	out, err := mdConverter.ConvertNode(doc.Nodes[0], opts...)
	if err != nil {
		return "", fmt.Errorf("failed to convert to markdown: %w", err)
	}
	return strings.TrimSpace(string(out)) + "\n", nil
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}
