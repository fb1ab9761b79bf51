package client

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/bytedance/sonic"
)

// RequestSpec is a parsed request description. A plain URL means GET; the
// form "url,{json}" may set method, headers and body.
type RequestSpec struct {
	URL     string
	Method  string
	Headers map[string]string
	Body    any
}

type requestOptions struct {
	Method  string         `json:"method"`
	Headers map[string]any `json:"headers"`
	Body    any            `json:"body"`
}

// ParseRequestSpec parses raw. When the text after the first comma is not a
// JSON object the whole string is taken as the URL.
func ParseRequestSpec(raw string) RequestSpec {
	raw = strings.TrimSpace(raw)
	spec := RequestSpec{URL: raw, Method: http.MethodGet, Headers: map[string]string{}}
	if raw == "" {
		return spec
	}

	target, rest, ok := strings.Cut(raw, ",")
	if !ok {
		return spec
	}
	rest = strings.TrimSpace(rest)
	if !strings.HasPrefix(rest, "{") {
		return spec
	}

	var opts requestOptions
	if err := sonic.UnmarshalString(rest, &opts); err != nil {
		return spec
	}

	spec.URL = strings.TrimSpace(target)
	if opts.Method != "" {
		spec.Method = strings.ToUpper(opts.Method)
	}
	spec.Headers = stringMap(opts.Headers)
	spec.Body = opts.Body
	return spec
}

// ParseHeaderSpec accepts a header object or its JSON text. Anything else
// yields no headers.
func ParseHeaderSpec(header any) map[string]string {
	switch h := header.(type) {
	case nil:
		return map[string]string{}
	case map[string]string:
		out := make(map[string]string, len(h))
		for k, v := range h {
			out[k] = v
		}
		return out
	case map[string]any:
		return stringMap(h)
	case string:
		var parsed map[string]any
		if strings.TrimSpace(h) == "" || sonic.UnmarshalString(h, &parsed) != nil {
			return map[string]string{}
		}
		return stringMap(parsed)
	default:
		return map[string]string{}
	}
}

func stringMap(in map[string]any) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		switch val := v.(type) {
		case nil:
		case string:
			out[k] = val
		default:
			out[k] = fmt.Sprint(val)
		}
	}
	return out
}
