package source

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
)

var codec = sonic.Config{UseInt64: true, SortMapKeys: true}.Froze()

// Normalize validates a raw source object and fills defaults: name falls
// back to the URL, group to "", type to 0, and enabled is true unless it
// is literally false. The input map is not modified.
func Normalize(raw any) (map[string]any, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, ErrInvalidSource
	}
	url := stringValue(obj[KeyURL])
	if url == "" {
		return nil, ErrInvalidSource
	}

	out := make(map[string]any, len(obj)+4)
	for k, v := range obj {
		out[k] = v
	}

	out[KeyURL] = url
	if name := stringValue(obj[KeyName]); name != "" {
		out[KeyName] = name
	} else {
		out[KeyName] = url
	}
	out[KeyGroup] = stringValue(obj[KeyGroup])

	typ, ok := intValue(obj[KeyType])
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedType, obj[KeyType])
	}
	out[KeyType] = typ

	enabled, isBool := obj[KeyEnabled].(bool)
	out[KeyEnabled] = !isBool || enabled
	return out, nil
}

// Validate additionally rejects non-text sources.
func Validate(raw any) (map[string]any, error) {
	payload, err := Normalize(raw)
	if err != nil {
		return nil, err
	}
	if payload[KeyType] != TypeText {
		return nil, ErrUnsupportedType
	}
	return payload, nil
}

// Decode builds the typed view of a normalized payload.
func Decode(payload map[string]any) (*Source, error) {
	data, err := codec.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode source: %w", err)
	}
	var src Source
	if err := codec.Unmarshal(data, &src); err != nil {
		return nil, fmt.Errorf("decode source %v: %w", payload[KeyURL], err)
	}
	return &src, nil
}

// canonicalize round-trips v through JSON so YAML and TOML decodes end up
// with the same value types as JSON ones.
func canonicalize(v any) (any, error) {
	data, err := codec.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := codec.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func stringValue(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}

func intValue(v any) (int, bool) {
	switch n := v.(type) {
	case nil:
		return 0, true
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, true
		}
		i, err := strconv.Atoi(s)
		return i, err == nil
	default:
		return 0, false
	}
}
