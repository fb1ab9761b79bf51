// Package urls normalizes URLs extracted from fetched pages and encodes
// source identifiers for use in request paths.
package urls

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	httpPattern   = regexp.MustCompile(`(?i)^https?://`)
	opaquePattern = regexp.MustCompile(`(?i)^(data|mailto|javascript):`)

	// componentKeep restores the characters QueryEscape encodes but a URI
	// component leaves literal.
	componentKeep = strings.NewReplacer("+", "%20", "%21", "!", "%27", "'", "%28", "(", "%29", ")", "%2A", "*")
)

// Resolve turns value into an absolute URL using base. Absolute http(s)
// URLs and data/mailto/javascript URIs are returned untouched; anything that
// cannot be resolved is returned trimmed but otherwise unchanged.
func Resolve(value, base string) string {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return ""
	}
	if httpPattern.MatchString(raw) || opaquePattern.MatchString(raw) {
		return raw
	}

	ref, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if ref.IsAbs() {
		return ref.String()
	}

	baseURL, err := url.Parse(strings.TrimSpace(base))
	if err != nil || !baseURL.IsAbs() || baseURL.Host == "" {
		return raw
	}
	return baseURL.ResolveReference(ref).String()
}

// IsHTTP reports whether value is an absolute http(s) URL.
func IsHTTP(value string) bool {
	return httpPattern.MatchString(strings.TrimSpace(value))
}

// EscapeComponent percent-encodes s as a URI component: everything except
// letters, digits and -_.!~*'() is escaped, and spaces become %20.
func EscapeComponent(s string) string {
	return componentKeep.Replace(url.QueryEscape(s))
}

// EncodeSourceID escapes a source URL so it fits in a single path segment.
func EncodeSourceID(sourceURL string) string {
	return EscapeComponent(sourceURL)
}

// DecodeSourceID reverses EncodeSourceID. Malformed escapes are returned as is.
func DecodeSourceID(id string) string {
	decoded, err := url.PathUnescape(id)
	if err != nil {
		return id
	}
	return decoded
}
