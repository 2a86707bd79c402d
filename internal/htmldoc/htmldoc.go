// Package htmldoc implements transcript.Document on top of goquery.
package htmldoc

import (
	"fmt"
	"strings"
	"transcript-scraper/internal/transcript"
	"transcript-scraper/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

type Parser struct{}

func (Parser) Parse(markup string) (transcript.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return Document{Node: Node{sel: doc.Selection}}, nil
}

// Node wraps a goquery selection of exactly one element.
type Node struct {
	sel *goquery.Selection
}

func wrap(sel *goquery.Selection) []transcript.Node {
	nodes := make([]transcript.Node, sel.Length())
	for i := range nodes {
		nodes[i] = Node{sel: sel.Eq(i)}
	}
	return nodes
}

func (n Node) FindClass(class string) []transcript.Node {
	return wrap(n.sel.Find("." + class))
}

func (n Node) ChildrenClass(class string) []transcript.Node {
	return wrap(n.sel.ChildrenFiltered("." + class))
}

func (n Node) FindTag(tag string) []transcript.Node {
	return wrap(n.sel.Find(tag))
}

func (n Node) FindRel(tag, rel string) []transcript.Node {
	return wrap(n.sel.Find(fmt.Sprintf(`%s[rel~="%s"]`, tag, rel)))
}

func (n Node) NextSibling() (transcript.Node, bool) {
	next := n.sel.Next()
	if next.Length() == 0 {
		return nil, false
	}
	return Node{sel: next}, true
}

func (n Node) ID() string {
	return n.sel.AttrOr("id", "")
}

func (n Node) Attr(name string) (string, bool) {
	return n.sel.Attr(name)
}

func (n Node) Text() string {
	var out strings.Builder
	for _, node := range n.sel.Nodes {
		out.WriteString(htmlutil.GetText(node))
	}
	return out.String()
}

func (n Node) InnerHTML() (string, error) {
	return n.sel.Html()
}

type Document struct {
	Node
}

func (d Document) Title() string {
	return htmlutil.CleanText(d.sel.Find("title").First().Text())
}
