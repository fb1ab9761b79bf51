package engine

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Extractor keywords that end a segment chain.
const (
	ExtractText      = "text"
	ExtractHTML      = "html"
	ExtractOuterHTML = "outerHtml"
	ExtractOwnText   = "ownText"
	ExtractTextNodes = "textNodes"
	ExtractAll       = "all"
	ExtractHref      = "href"
	ExtractSrc       = "src"
)

var extractorKeys = map[string]struct{}{
	ExtractText:      {},
	ExtractHTML:      {},
	ExtractOuterHTML: {},
	ExtractOwnText:   {},
	ExtractTextNodes: {},
	ExtractAll:       {},
	ExtractHref:      {},
	ExtractSrc:       {},
}

var (
	signedIndexPattern = regexp.MustCompile(`^[+-]?\d+$`)
	attrNamePattern    = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_:.-]*$`)
)

// SegmentKind classifies one step of a segment chain.
type SegmentKind int

const (
	SegmentFind SegmentKind = iota
	SegmentIndex
	SegmentChildren
)

// Segment is one parsed step. Index is meaningful only when HasIndex is set.
type Segment struct {
	Kind     SegmentKind
	Selector string
	Index    int
	HasIndex bool
	Raw      string
}

// Chain is a parsed segment rule: the narrowing steps plus an optional
// trailing extractor keyword.
type Chain struct {
	Segments  []Segment
	Extractor string
}

// ParseChain splits a segment-dialect rule on "@". Parsing stops at the
// first extractor keyword; segments after it are ignored.
func ParseChain(rule string) Chain {
	var chain Chain
	for _, raw := range strings.Split(stripPrefix(rule, prefixCSS), "@") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if _, ok := extractorKeys[raw]; ok {
			chain.Extractor = raw
			break
		}
		chain.Segments = append(chain.Segments, parseSegment(raw))
	}
	return chain
}

func parseSegment(raw string) Segment {
	if seg, ok := parseTypedSegment(raw); ok {
		return seg
	}

	if signedIndexPattern.MatchString(raw) {
		idx, err := strconv.Atoi(raw)
		if err == nil {
			return Segment{Kind: SegmentIndex, Index: idx, HasIndex: true, Raw: raw}
		}
	}

	if raw == "children" {
		return Segment{Kind: SegmentChildren, Raw: raw}
	}
	if rest, ok := strings.CutPrefix(raw, "children."); ok {
		idx, has := parseIndex(rest)
		return Segment{Kind: SegmentChildren, Index: idx, HasIndex: has, Raw: raw}
	}

	return Segment{Kind: SegmentFind, Selector: raw, Raw: raw}
}

// parseTypedSegment handles class.X[.i], id.X[.i], tag.X[.i] and css.<raw>.
func parseTypedSegment(raw string) (Segment, bool) {
	parts := strings.Split(raw, ".")
	if len(parts) < 2 || parts[1] == "" {
		return Segment{}, false
	}

	var selector string
	switch parts[0] {
	case "class":
		selector = "." + parts[1]
	case "id":
		selector = "#" + parts[1]
	case "tag":
		selector = parts[1]
	case "css":
		return Segment{Kind: SegmentFind, Selector: strings.Join(parts[1:], "."), Raw: raw}, true
	default:
		return Segment{}, false
	}

	seg := Segment{Kind: SegmentFind, Selector: selector, Raw: raw}
	if len(parts) > 2 {
		seg.Index, seg.HasIndex = parseIndex(parts[2])
	}
	return seg, true
}

// parseIndex accepts only non-negative integers; anything else means no index.
func parseIndex(token string) (int, bool) {
	if token == "" {
		return 0, false
	}
	idx, err := strconv.Atoi(token)
	if err != nil || idx < 0 {
		return 0, false
	}
	return idx, true
}

// apply advances sel by one segment.
func (s Segment) apply(sel *goquery.Selection) *goquery.Selection {
	switch s.Kind {
	case SegmentIndex:
		return sel.Eq(s.Index)
	case SegmentChildren:
		children := sel.Children()
		if s.HasIndex {
			return children.Eq(s.Index)
		}
		return children
	default:
		next := sel.Find(s.Selector)
		if s.HasIndex {
			next = next.Eq(s.Index)
		}
		return next
	}
}

// Select runs the narrowing steps from scope and returns the final selection
// together with the effective extractor. A trailing segment that matches no
// element but names an attribute present on the prior selection is taken as
// an attribute extractor.
func (c Chain) Select(scope *goquery.Selection) (*goquery.Selection, string) {
	current := scope
	last := len(c.Segments) - 1
	for i, seg := range c.Segments {
		next := seg.apply(current)
		if c.Extractor == "" && i == last && i > 0 && next.Length() == 0 && isAttrSegment(seg, current) {
			return current, seg.Raw
		}
		current = next
	}
	return current, c.Extractor
}

func isAttrSegment(seg Segment, sel *goquery.Selection) bool {
	if seg.Kind != SegmentFind || seg.Selector != seg.Raw || !attrNamePattern.MatchString(seg.Raw) {
		return false
	}
	found := false
	sel.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		_, found = s.Attr(seg.Raw)
		return !found
	})
	return found
}

// extractValues pulls one value per node in list mode or the first node's
// value otherwise. Blank values are dropped in list mode.
func extractValues(sel *goquery.Selection, extractor string, all bool) []string {
	if !all {
		if sel.Length() == 0 {
			return nil
		}
		return []string{extractOne(sel.First(), extractor)}
	}

	values := make([]string, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		if v := extractOne(s, extractor); strings.TrimSpace(v) != "" {
			values = append(values, v)
		}
	})
	return values
}

func extractOne(sel *goquery.Selection, extractor string) string {
	switch extractor {
	case "", ExtractText, ExtractTextNodes:
		return strings.TrimSpace(sel.Text())
	case ExtractHTML:
		inner, err := sel.Html()
		if err != nil {
			return ""
		}
		return strings.TrimSpace(inner)
	case ExtractOuterHTML, ExtractAll:
		outer, err := goquery.OuterHtml(sel)
		if err != nil {
			return ""
		}
		return strings.TrimSpace(outer)
	case ExtractOwnText:
		return strings.TrimSpace(ownText(sel.Get(0)))
	default:
		if attr, ok := sel.Attr(extractor); ok {
			return strings.TrimSpace(attr)
		}
		return strings.TrimSpace(sel.Text())
	}
}

// ownText collects the node's direct text children, skipping any text held
// by descendant elements.
func ownText(n *html.Node) string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}
