package engine

import (
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/ohler55/ojg/jp"
	"go.uber.org/zap"
)

var (
	jsonDecoder = sonic.Config{UseInt64: true}.Froze()
	jsonEncoder = sonic.Config{SortMapKeys: true}.Froze()
)

type compiledPath struct {
	expr jp.Expr
	err  error
}

var pathCache = newCompileCache[compiledPath](maxCachedRules)

// ParseJSON decodes raw strictly. ok is false for malformed input and for a
// bare null, neither of which yields a usable JSON context.
func ParseJSON(raw string) (value any, ok bool) {
	if err := jsonDecoder.UnmarshalFromString(raw, &value); err != nil {
		return nil, false
	}
	return value, value != nil
}

func cachedPath(expr string) (jp.Expr, error) {
	c := pathCache.get(expr, func(expr string) compiledPath {
		compiled, err := jp.ParseString(expr)
		return compiledPath{expr: compiled, err: err}
	})
	return c.expr, c.err
}

// queryJSON returns every value matched by a JSONPath rule.
func queryJSON(data any, rule string) (matches []any) {
	expr := stripPrefix(rule, prefixJSON)
	if expr == "" {
		return nil
	}

	compiled, err := cachedPath(expr)
	if err != nil {
		logger().Debug("rejected jsonpath expression", zap.String("expr", expr), zap.Error(err))
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			logger().Debug("jsonpath evaluation failed", zap.String("expr", expr), zap.Any("panic", r))
			matches = nil
		}
	}()

	return compiled.Get(data)
}

// evalJSONPath stringifies the matches of rule.
func evalJSONPath(data any, rule string, all bool) []string {
	return jsonStrings(queryJSON(data, rule), all)
}

// walkPath follows a dot-separated key path. Numeric parts index arrays.
// When the walk fails the whole path is tried as a literal key.
func walkPath(data any, path string) (any, bool) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, false
	}

	cur, ok := data, true
	for _, part := range strings.Split(path, ".") {
		if part == "" {
			continue
		}
		if cur, ok = child(cur, part); !ok {
			break
		}
	}
	if ok {
		return cur, true
	}

	if obj, isObj := data.(map[string]any); isObj {
		v, found := obj[path]
		return v, found
	}
	return nil, false
}

func child(v any, key string) (any, bool) {
	switch node := v.(type) {
	case map[string]any:
		c, ok := node[key]
		return c, ok
	case []any:
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 0 || idx >= len(node) {
			return nil, false
		}
		return node[idx], true
	default:
		return nil, false
	}
}

// jsonStrings converts values to text. Single mode keeps only the first
// value, blank or not; list mode drops blanks.
func jsonStrings(values []any, all bool) []string {
	if !all {
		if len(values) == 0 {
			return nil
		}
		return []string{jsonText(values[0])}
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		s := jsonText(v)
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

// jsonText renders a decoded value: strings trimmed, null empty, anything
// else as compact JSON.
func jsonText(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	default:
		s, err := jsonEncoder.MarshalToString(val)
		if err != nil {
			return ""
		}
		return s
	}
}
