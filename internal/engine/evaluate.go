package engine

import (
	"strings"

	"github.com/GriffinCanCode/ReaderOS/backend/internal/shared/urls"
)

// Rule is a compiled rule: the expression tree plus its regex suffix.
type Rule struct {
	Raw   string
	Expr  Expr
	Pairs []RegexPair
}

var ruleCache = newCompileCache[*Rule](maxCachedRules)

// Compile parses rule and caches the result by its raw text.
func Compile(rule string) *Rule {
	return ruleCache.get(rule, compileRule)
}

func compileRule(rule string) *Rule {
	main, pairs := SplitRegex(rule)
	compiled := &Rule{Raw: rule, Pairs: pairs}
	if main != "" {
		compiled.Expr = ParseExpr(main)
	}
	return compiled
}

// Empty reports whether the rule has nothing to evaluate.
func (r *Rule) Empty() bool {
	return r.Expr == nil
}

// Options controls post-processing of extracted values.
type Options struct {
	// BaseURL is the URL the payload was fetched from.
	BaseURL string
	// ResolveURL resolves every value against BaseURL.
	ResolveURL bool
}

// Apply evaluates rule against the whole document and returns one value.
func (d *Document) Apply(rule string, opts Options) string {
	return d.pick(nil, rule, opts)
}

// ApplyAll evaluates rule against the whole document in list mode.
func (d *Document) ApplyAll(rule string, opts Options) []string {
	return d.pickAll(nil, rule, opts)
}

// Pick evaluates a field rule scoped to item.
func (d *Document) Pick(item Item, rule string, opts Options) string {
	return d.pick(&item, rule, opts)
}

// PickAll evaluates a field rule scoped to item in list mode.
func (d *Document) PickAll(item Item, rule string, opts Options) []string {
	return d.pickAll(&item, rule, opts)
}

func (d *Document) pick(it *Item, rule string, opts Options) string {
	r := Compile(rule)
	if r.Empty() {
		return ""
	}
	return finish(d.evalOne(r.Expr, it), r.Pairs, opts)
}

func (d *Document) pickAll(it *Item, rule string, opts Options) []string {
	r := Compile(rule)
	if r.Empty() {
		return []string{}
	}
	values := d.evalAll(r.Expr, it)
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = finish(v, r.Pairs, opts)
	}
	return out
}

func finish(value string, pairs []RegexPair, opts Options) string {
	value = ApplyRegex(value, pairs)
	if opts.ResolveURL {
		return urls.Resolve(value, opts.BaseURL)
	}
	return value
}

// evalOne walks e in single mode.
func (d *Document) evalOne(e Expr, it *Item) string {
	switch e := e.(type) {
	case Alt:
		for _, op := range e {
			if v := d.evalOne(op, it); strings.TrimSpace(v) != "" {
				return v
			}
		}
		return ""
	case Concat:
		var b strings.Builder
		for _, op := range e {
			b.WriteString(d.evalOne(op, it))
		}
		return b.String()
	case Intersect:
		if kept := d.intersect(e, it); len(kept) > 0 {
			return kept[0]
		}
		return ""
	case Leaf:
		if values := d.leaf(e, it, false); len(values) > 0 {
			return values[0]
		}
		return ""
	default:
		return ""
	}
}

// evalAll walks e in list mode.
func (d *Document) evalAll(e Expr, it *Item) []string {
	switch e := e.(type) {
	case Alt:
		for _, op := range e {
			if v := d.evalAll(op, it); len(v) > 0 {
				return v
			}
		}
		return []string{}
	case Concat:
		out := []string{}
		for _, op := range e {
			out = append(out, d.evalAll(op, it)...)
		}
		return out
	case Intersect:
		return d.intersect(e, it)
	case Leaf:
		values := d.leaf(e, it, true)
		if values == nil {
			return []string{}
		}
		return values
	default:
		return []string{}
	}
}

// intersect keeps the first operand's values that occur in every other
// operand, preserving the first operand's order.
func (d *Document) intersect(e Intersect, it *Item) []string {
	if len(e) == 0 {
		return []string{}
	}
	kept := d.evalAll(e[0], it)
	for _, op := range e[1:] {
		present := make(map[string]struct{})
		for _, v := range d.evalAll(op, it) {
			present[v] = struct{}{}
		}
		filtered := kept[:0:0]
		for _, v := range kept {
			if _, ok := present[v]; ok {
				filtered = append(filtered, v)
			}
		}
		kept = filtered
	}
	return kept
}

// leaf dispatches a terminal rule to the engine that owns it. A rule whose
// engine does not match the item's kind yields nothing.
func (d *Document) leaf(l Leaf, it *Item, all bool) []string {
	if l.Engine == EngineUnknown {
		return nil
	}

	if it == nil {
		return d.leafDocument(l, all)
	}

	switch it.Kind {
	case ItemJSON:
		return leafJSON(it.value, l, all)
	case ItemCSS:
		if !l.Engine.Segmented() {
			return nil
		}
		sel, extractor := ParseChain(l.Rule).Select(d.scope(it))
		return extractValues(sel, extractor, all)
	case ItemXPath:
		if l.Engine != EngineXPath {
			return nil
		}
		return evalXPath(it.node, l.Rule, all)
	default:
		return nil
	}
}

func (d *Document) leafDocument(l Leaf, all bool) []string {
	if d.IsJSON() {
		return leafJSON(d.json, l, all)
	}

	switch {
	case l.Engine == EngineXPath:
		return evalXPath(d.root, l.Rule, all)
	case l.Engine.Segmented():
		sel, extractor := ParseChain(l.Rule).Select(d.scope(nil))
		return extractValues(sel, extractor, all)
	default:
		return nil
	}
}

// leafJSON evaluates a rule against a decoded value: JSONPath rules through
// the path engine, XPath never, anything else as a dot path.
func leafJSON(value any, l Leaf, all bool) []string {
	switch {
	case l.Engine == EngineJSONPath:
		return evalJSONPath(value, l.Rule, all)
	case l.Engine == EngineXPath:
		return nil
	}

	found, ok := walkPath(value, stripPrefix(l.Rule, prefixCSS))
	if !ok {
		return nil
	}
	if arr, isArr := found.([]any); isArr && all {
		return jsonStrings(arr, true)
	}
	return jsonStrings([]any{found}, all)
}
