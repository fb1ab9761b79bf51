package engine

import "sort"

// Probe describes an ad hoc rule evaluation against one payload. When List
// is set the payload is split into items and every field rule is evaluated
// per item; otherwise Rule is evaluated against the whole document.
type Probe struct {
	Rule       string            `json:"rule"`
	List       string            `json:"list,omitempty"`
	Fields     map[string]string `json:"fields,omitempty"`
	All        bool              `json:"all,omitempty"`
	BaseURL    string            `json:"baseUrl,omitempty"`
	ResolveURL bool              `json:"resolveUrl,omitempty"`
}

// ProbeResult is the outcome of a Probe. Exactly one of Value, Values or
// Items is meaningful, depending on the probe's mode.
type ProbeResult struct {
	Engine string              `json:"engine"`
	Value  *string             `json:"value,omitempty"`
	Values []string            `json:"values,omitempty"`
	Items  []map[string]string `json:"items,omitempty"`
	Count  int                 `json:"count"`
}

// Run evaluates p against d.
func (d *Document) Run(p Probe) ProbeResult {
	opts := Options{BaseURL: p.BaseURL, ResolveURL: p.ResolveURL}

	if p.List != "" {
		items := d.List(p.List)
		out := make([]map[string]string, 0, len(items))
		names := fieldNames(p.Fields)
		for _, it := range items {
			row := make(map[string]string, len(names))
			for _, name := range names {
				row[name] = d.Pick(it, p.Fields[name], opts)
			}
			out = append(out, row)
		}
		return ProbeResult{Engine: Detect(p.List).String(), Items: out, Count: len(out)}
	}

	res := ProbeResult{Engine: Detect(p.Rule).String()}
	if p.All {
		res.Values = d.ApplyAll(p.Rule, opts)
		res.Count = len(res.Values)
		return res
	}
	value := d.Apply(p.Rule, opts)
	res.Value = &value
	if value != "" {
		res.Count = 1
	}
	return res
}

func fieldNames(fields map[string]string) []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
