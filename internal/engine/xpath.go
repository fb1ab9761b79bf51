package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

type compiledXPath struct {
	expr *xpath.Expr
	err  error
}

var xpathCache = newCompileCache[compiledXPath](maxCachedRules)

func cachedXPath(expr string) (*xpath.Expr, error) {
	c := xpathCache.get(expr, func(expr string) compiledXPath {
		compiled, err := xpath.Compile(expr)
		return compiledXPath{expr: compiled, err: err}
	})
	return c.expr, c.err
}

// evalXPath evaluates rule against top. Node results become attribute values
// or text content; scalar results are formatted as a single string. Single
// mode keeps the first matched node even when its text is blank.
func evalXPath(top *html.Node, rule string, all bool) (values []string) {
	expr := stripPrefix(rule, prefixXPath)
	if expr == "" || top == nil {
		return nil
	}

	compiled, err := cachedXPath(expr)
	if err != nil {
		logger().Debug("rejected xpath expression", zap.String("expr", expr), zap.Error(err))
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			logger().Debug("xpath evaluation failed", zap.String("expr", expr), zap.Any("panic", r))
			values = nil
		}
	}()

	switch result := compiled.Evaluate(htmlquery.CreateXPathNavigator(top)).(type) {
	case *xpath.NodeIterator:
		for result.MoveNext() {
			v := strings.TrimSpace(result.Current().Value())
			if !all {
				return []string{v}
			}
			if v != "" {
				values = append(values, v)
			}
		}
	case float64:
		values = scalar(strconv.FormatFloat(result, 'f', -1, 64))
	case string:
		values = scalar(result)
	case bool:
		values = scalar(strconv.FormatBool(result))
	case nil:
	default:
		values = scalar(fmt.Sprint(result))
	}
	return values
}

// selectXPath returns the nodes matched by rule, in document order.
func selectXPath(top *html.Node, rule string) (nodes []*html.Node) {
	expr := stripPrefix(rule, prefixXPath)
	if expr == "" || top == nil {
		return nil
	}

	compiled, err := cachedXPath(expr)
	if err != nil {
		logger().Debug("rejected xpath expression", zap.String("expr", expr), zap.Error(err))
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			logger().Debug("xpath selection failed", zap.String("expr", expr), zap.Any("panic", r))
			nodes = nil
		}
	}()

	return htmlquery.QuerySelectorAll(top, compiled)
}

func scalar(v string) []string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return []string{v}
}
