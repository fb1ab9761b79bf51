package engine

import "strings"

// Engine identifies the query dialect a rule is written in.
type Engine int

const (
	// EngineUnknown is assigned to blank rules; it always evaluates to empty.
	EngineUnknown Engine = iota
	// EngineCSS is the segment dialect introduced by an explicit "@css:" prefix.
	EngineCSS
	// EngineJsoup is the same segment dialect without a prefix (the default).
	EngineJsoup
	// EngineXPath is selected by "@XPath:" or a leading "//".
	EngineXPath
	// EngineJSONPath is selected by "@json:" or a leading "$.".
	EngineJSONPath
)

const (
	prefixCSS   = "@css:"
	prefixXPath = "@xpath:"
	prefixJSON  = "@json:"
)

// String returns the string representation of the engine
func (e Engine) String() string {
	switch e {
	case EngineCSS:
		return "css"
	case EngineJsoup:
		return "jsoup-default"
	case EngineXPath:
		return "xpath"
	case EngineJSONPath:
		return "jsonpath"
	default:
		return "unknown"
	}
}

// Segmented reports whether the engine evaluates the CSS segment dialect.
func (e Engine) Segmented() bool {
	return e == EngineCSS || e == EngineJsoup
}

// Detect classifies a raw rule by its literal prefix. It never looks at a
// document, so the same rule always maps to the same engine.
func Detect(rule string) Engine {
	value := strings.TrimSpace(rule)
	switch {
	case value == "":
		return EngineUnknown
	case hasPrefixFold(value, prefixCSS):
		return EngineCSS
	case hasPrefixFold(value, prefixXPath), strings.HasPrefix(value, "//"):
		return EngineXPath
	case hasPrefixFold(value, prefixJSON), strings.HasPrefix(value, "$."):
		return EngineJSONPath
	default:
		return EngineJsoup
	}
}

// stripPrefix removes a case-insensitive dialect prefix and trims the rest.
func stripPrefix(rule, prefix string) string {
	value := strings.TrimSpace(rule)
	if hasPrefixFold(value, prefix) {
		value = value[len(prefix):]
	}
	return strings.TrimSpace(value)
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
