package annotator

import (
	_ "embed"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/vincent-caetano/how-much/models"
)

const (
	StyleID  = "timecost-style"
	ScriptID = "timecost-tooltip"
)

//go:embed assets/timecost.css
var stylesheet string

//go:embed assets/tooltip.js
var tooltipScript string

// injectAssets adds the badge stylesheet, and the tooltip script in
// comfortable mode, to the document head once. Fragments without a head are
// left alone.
func (a *Annotator) injectAssets(n *html.Node) {
	doc := goquery.NewDocumentFromNode(topOf(n))

	head := doc.Find("head").First()
	if head.Length() == 0 {
		return
	}
	if doc.Find("#"+StyleID).Length() == 0 {
		head.AppendNodes(inlineAsset(atom.Style, StyleID, stylesheet))
	}
	if a.mode == models.ModeComfortable && doc.Find("#"+ScriptID).Length() == 0 {
		head.AppendNodes(inlineAsset(atom.Script, ScriptID, tooltipScript))
	}
}

// removeAsset deletes the injected element with the given id from the
// document holding n.
func removeAsset(n *html.Node, id string) {
	goquery.NewDocumentFromNode(topOf(n)).Find("#" + id).Remove()
}

func topOf(n *html.Node) *html.Node {
	for n.Parent != nil {
		n = n.Parent
	}
	return n
}

func inlineAsset(tag atom.Atom, id, body string) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     tag.String(),
		DataAtom: tag,
		Attr:     []html.Attribute{{Key: "id", Val: id}},
	}
	n.AppendChild(textNode(body))
	return n
}
