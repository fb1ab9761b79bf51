package engine

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// Document is the parsed form of one payload. A JSON payload keeps its
// decoded value; anything else is parsed once into an HTML tree shared by
// the segment and XPath evaluators. A Document is not safe for concurrent
// use and should be discarded after one extraction task.
type Document struct {
	raw  string
	json any
	root *html.Node
	dom  *goquery.Document
}

// NewDocument parses raw, preferring a strict JSON decode. Malformed markup
// still yields a best-effort tree; a blank payload is an empty JSON object.
func NewDocument(raw string) *Document {
	doc := &Document{raw: raw}

	if strings.TrimSpace(raw) == "" {
		doc.json = map[string]any{}
		return doc
	}

	if value, ok := ParseJSON(raw); ok {
		doc.json = value
		return doc
	}

	root, err := htmlquery.Parse(strings.NewReader(raw))
	if err != nil || root == nil {
		root = &html.Node{Type: html.DocumentNode}
	}
	doc.root = root
	doc.dom = goquery.NewDocumentFromNode(root)
	return doc
}

// IsJSON reports whether the payload decoded as JSON.
func (d *Document) IsJSON() bool {
	return d.root == nil
}

// Raw returns the payload the document was built from.
func (d *Document) Raw() string {
	return d.raw
}

// ItemKind tags an Item with the engine that produced it.
type ItemKind int

const (
	ItemCSS ItemKind = iota
	ItemXPath
	ItemJSON
)

// String returns the string representation of the item kind
func (k ItemKind) String() string {
	switch k {
	case ItemCSS:
		return "css-item"
	case ItemXPath:
		return "xpath-item"
	case ItemJSON:
		return "json-item"
	default:
		return "unknown-item"
	}
}

// Item is one element of an extracted list. It refers into the Document
// that produced it and is only valid while that Document is in use.
type Item struct {
	Kind  ItemKind
	node  *html.Node
	value any
}

// Node returns the element behind a css or xpath item.
func (it Item) Node() *html.Node {
	return it.node
}

// Value returns the decoded value behind a json item.
func (it Item) Value() any {
	return it.value
}

// identity is the key used when intersecting item lists.
func (it Item) identity() any {
	if it.node != nil {
		return it.node
	}
	return it.Kind.String() + ":" + jsonText(it.value)
}

// scope returns the selection segment rules start from.
func (d *Document) scope(it *Item) *goquery.Selection {
	if it == nil {
		return d.dom.Selection
	}
	return goquery.NewDocumentFromNode(it.node).Selection
}
