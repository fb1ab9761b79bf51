package http

import (
	"time"

	"github.com/GriffinCanCode/ReaderOS/backend/internal/infrastructure/monitoring"
)

// HandlerMetrics records per-operation call metrics for the handlers.
type HandlerMetrics struct {
	metrics *monitoring.Metrics
}

// NewHandlerMetrics creates a metrics wrapper. A nil metrics disables it.
func NewHandlerMetrics(metrics *monitoring.Metrics) *HandlerMetrics {
	return &HandlerMetrics{metrics: metrics}
}

// Track starts timing one operation; the returned func records it.
func (hm *HandlerMetrics) Track(service, operation string) func(err error) {
	start := time.Now()
	return func(err error) {
		if hm == nil || hm.metrics == nil {
			return
		}
		status := "success"
		if err != nil {
			status = "error"
		}
		hm.metrics.RecordServiceCall(service, operation, status, time.Since(start))
	}
}
