package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseChain(t *testing.T) {
	chain := ParseChain("@css: class.item.2 @ id.main @ tag.a @ css.x.y > z @ -1 @ children.0 @ children @ div p @ href @ text")

	assert.Equal(t, ExtractHref, chain.Extractor)
	assert.Equal(t, []Segment{
		{Kind: SegmentFind, Selector: ".item", Index: 2, HasIndex: true, Raw: "class.item.2"},
		{Kind: SegmentFind, Selector: "#main", Raw: "id.main"},
		{Kind: SegmentFind, Selector: "a", Raw: "tag.a"},
		{Kind: SegmentFind, Selector: "x.y > z", Raw: "css.x.y > z"},
		{Kind: SegmentIndex, Index: -1, HasIndex: true, Raw: "-1"},
		{Kind: SegmentChildren, Index: 0, HasIndex: true, Raw: "children.0"},
		{Kind: SegmentChildren, Raw: "children"},
		{Kind: SegmentFind, Selector: "div p", Raw: "div p"},
	}, chain.Segments)
}

func TestParseChainTypedEdgeCases(t *testing.T) {
	tests := []struct {
		raw  string
		want Segment
	}{
		{"class.", Segment{Kind: SegmentFind, Selector: "class.", Raw: "class."}},
		{"class.a.x", Segment{Kind: SegmentFind, Selector: ".a", Raw: "class.a.x"}},
		{"id.a.-2", Segment{Kind: SegmentFind, Selector: "#a", Raw: "id.a.-2"}},
		{"children.-1", Segment{Kind: SegmentChildren, Raw: "children.-1"}},
		{"12", Segment{Kind: SegmentIndex, Index: 12, HasIndex: true, Raw: "12"}},
		{"1a", Segment{Kind: SegmentFind, Selector: "1a", Raw: "1a"}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			chain := ParseChain(tt.raw)
			assert.Empty(t, chain.Extractor)
			assert.Equal(t, []Segment{tt.want}, chain.Segments)
		})
	}
}
