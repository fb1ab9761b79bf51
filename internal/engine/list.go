package engine

// List extracts the ordered items selected by a list rule. Any regex
// suffix on the rule is ignored. Items carry the kind of the engine that
// produced them so field rules are only evaluated by that engine.
func (d *Document) List(rule string) []Item {
	r := Compile(rule)
	if r.Empty() {
		return []Item{}
	}
	items := d.listExpr(r.Expr)
	if items == nil {
		return []Item{}
	}
	return items
}

func (d *Document) listExpr(e Expr) []Item {
	switch e := e.(type) {
	case Alt:
		for _, op := range e {
			if items := d.listExpr(op); len(items) > 0 {
				return items
			}
		}
		return nil
	case Concat:
		var out []Item
		for _, op := range e {
			out = append(out, d.listExpr(op)...)
		}
		return out
	case Intersect:
		if len(e) == 0 {
			return nil
		}
		kept := d.listExpr(e[0])
		for _, op := range e[1:] {
			present := make(map[any]struct{})
			for _, it := range d.listExpr(op) {
				present[it.identity()] = struct{}{}
			}
			var filtered []Item
			for _, it := range kept {
				if _, ok := present[it.identity()]; ok {
					filtered = append(filtered, it)
				}
			}
			kept = filtered
		}
		return kept
	case Leaf:
		return d.listLeaf(e)
	default:
		return nil
	}
}

func (d *Document) listLeaf(l Leaf) []Item {
	if l.Engine == EngineUnknown {
		return nil
	}

	if d.IsJSON() || l.Engine == EngineJSONPath {
		return jsonItems(d.json, l)
	}

	if l.Engine == EngineXPath {
		nodes := selectXPath(d.root, l.Rule)
		items := make([]Item, 0, len(nodes))
		for _, n := range nodes {
			items = append(items, Item{Kind: ItemXPath, node: n})
		}
		return items
	}

	sel, _ := ParseChain(l.Rule).Select(d.scope(nil))
	items := make([]Item, 0, sel.Length())
	for _, n := range sel.Nodes {
		items = append(items, Item{Kind: ItemCSS, node: n})
	}
	return items
}

// jsonItems selects values from data. A lone array match is flattened so
// "$.data" and "$.data[*]" produce the same items.
func jsonItems(data any, l Leaf) []Item {
	if data == nil {
		return nil
	}

	var matches []any
	switch l.Engine {
	case EngineJSONPath:
		matches = queryJSON(data, l.Rule)
	case EngineXPath:
		return nil
	default:
		found, ok := walkPath(data, stripPrefix(l.Rule, prefixCSS))
		if !ok || found == nil {
			return nil
		}
		matches = []any{found}
	}

	if len(matches) == 1 {
		if arr, ok := matches[0].([]any); ok {
			matches = arr
		}
	}

	items := make([]Item, 0, len(matches))
	for _, m := range matches {
		items = append(items, Item{Kind: ItemJSON, value: m})
	}
	return items
}
