package engine

import (
	"sync/atomic"

	"go.uber.org/zap"
)

var engineLogger atomic.Pointer[zap.Logger]

func init() {
	engineLogger.Store(zap.NewNop())
}

// SetLogger routes the engine's diagnostics (skipped patterns, rejected
// expressions) to l. A nil logger silences them.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	engineLogger.Store(l.Named("engine"))
}

func logger() *zap.Logger {
	return engineLogger.Load()
}
