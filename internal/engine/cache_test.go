package engine

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompileCacheEvictsLeastRecent(t *testing.T) {
	calls := 0
	c := newCompileCache[string](2)
	compile := func(key string) string {
		calls++
		return strings.ToUpper(key)
	}

	assert.Equal(t, "A", c.get("a", compile))
	assert.Equal(t, "B", c.get("b", compile))
	assert.Equal(t, "A", c.get("a", compile))
	assert.Equal(t, 2, calls)

	c.get("c", compile)
	assert.Equal(t, 2, c.len())

	c.get("b", compile)
	assert.Equal(t, 4, calls, "b was evicted")
	c.get("a", compile)
	assert.Equal(t, 5, calls, "a was evicted by b")
}

func TestRuleCachesStayBounded(t *testing.T) {
	doc := NewDocument(`<div n="1">one</div>`)
	for i := 0; i < maxCachedRules+100; i++ {
		doc.Apply(fmt.Sprintf("//div[@n='%d']##p%d##r", i, i), Options{})
	}

	assert.LessOrEqual(t, ruleCache.len(), maxCachedRules)
	assert.LessOrEqual(t, xpathCache.len(), maxCachedRules)
	assert.LessOrEqual(t, regexCache.len(), maxCachedRules)
	assert.Equal(t, "one", doc.Apply("//div[@n='1']", Options{}))
}
