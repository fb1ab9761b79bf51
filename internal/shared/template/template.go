// Package template renders search URL templates such as
// "/search?q={{key}}&p={{page}}" or "/list/{{(page-1)*20}}".
package template

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/GriffinCanCode/ReaderOS/backend/internal/shared/urls"
	"github.com/dop251/goja"
)

const evalTimeout = 50 * time.Millisecond

var (
	placeholderPattern = regexp.MustCompile(`\{\{\s*([^}]+?)\s*\}\}`)
	safeExprPattern    = regexp.MustCompile(`^[\d\s+\-*/%().keypage]+$`)
)

// Render substitutes every "{{...}}" placeholder. "key" is URL-encoded,
// "page" is the page number, and short arithmetic over key and page is
// evaluated. Any other expression renders as an empty string.
func Render(tmpl, key string, page int) string {
	if tmpl == "" {
		return ""
	}
	if page < 1 {
		page = 1
	}

	return placeholderPattern.ReplaceAllStringFunc(tmpl, func(match string) string {
		expr := strings.TrimSpace(placeholderPattern.FindStringSubmatch(match)[1])
		switch expr {
		case "key":
			return urls.EscapeComponent(key)
		case "page":
			return strconv.Itoa(page)
		}
		if !safeExprPattern.MatchString(expr) {
			return ""
		}
		return evaluate(expr, numericKey(key), page)
	})
}

func numericKey(key string) float64 {
	n, err := strconv.ParseFloat(strings.TrimSpace(key), 64)
	if err != nil {
		return 0
	}
	return n
}

// evaluate runs expr in a fresh VM with only key and page defined.
func evaluate(expr string, key float64, page int) string {
	vm := goja.New()
	vm.Set("key", key)
	vm.Set("page", page)

	timer := time.AfterFunc(evalTimeout, func() {
		vm.Interrupt("template expression timeout")
	})
	defer timer.Stop()

	val, err := vm.RunString("(" + expr + ")")
	if err != nil || val == nil || goja.IsUndefined(val) || goja.IsNull(val) {
		return ""
	}
	return val.String()
}
