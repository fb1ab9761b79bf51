package resilience

import "sync"

// Group lazily creates one breaker per key, all sharing the same settings.
// Fetching uses one breaker per remote host so a failing site does not
// trip requests to healthy ones.
type Group struct {
	prefix   string
	settings Settings
	breakers sync.Map
}

// NewGroup creates a breaker group. Breaker names are prefix + ":" + key.
func NewGroup(prefix string, settings Settings) *Group {
	return &Group{prefix: prefix, settings: settings}
}

// Get returns the breaker for key, creating it on first use.
func (g *Group) Get(key string) *Breaker {
	if b, ok := g.breakers.Load(key); ok {
		return b.(*Breaker)
	}
	b, _ := g.breakers.LoadOrStore(key, New(g.prefix+":"+key, g.settings))
	return b.(*Breaker)
}

// States returns a snapshot of every breaker's state keyed by key.
func (g *Group) States() map[string]State {
	states := make(map[string]State)
	g.breakers.Range(func(k, v any) bool {
		states[k.(string)] = v.(*Breaker).State()
		return true
	})
	return states
}
