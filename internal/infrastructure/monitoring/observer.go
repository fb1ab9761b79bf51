package monitoring

import (
	"errors"
	"strconv"
	"time"

	"github.com/GriffinCanCode/ReaderOS/backend/internal/infrastructure/resilience"
)

// Fetch outcomes.
const (
	FetchOK          = "ok"
	FetchStatusError = "status"
	FetchCircuitOpen = "circuit_open"
	FetchError       = "error"
)

// ObserveFetch records one outbound fetch.
func (m *Metrics) ObserveFetch(host string, status int, elapsed time.Duration, err error) {
	outcome := FetchOK
	switch {
	case err == nil:
	case errors.Is(err, resilience.ErrCircuitOpen), errors.Is(err, resilience.ErrTooManyRequests):
		outcome = FetchCircuitOpen
	case status > 0:
		outcome = FetchStatusError + "_" + strconv.Itoa(status/100) + "xx"
	default:
		outcome = FetchError
	}
	m.FetchesTotal.WithLabelValues(host, outcome).Inc()
	m.FetchDuration.WithLabelValues(host).Observe(elapsed.Seconds())

	m.mu.Lock()
	m.snapshot.TotalFetches++
	if err != nil {
		m.snapshot.FailedFetches++
	}
	m.mu.Unlock()
}

// ObserveBreakerState records a fetch breaker transition.
func (m *Metrics) ObserveBreakerState(name string, state resilience.State) {
	m.BreakerState.WithLabelValues(name).Set(float64(state))
}

// ObserveExtracted records items extracted by a task.
func (m *Metrics) ObserveExtracted(task string, items int) {
	m.ExtractedItems.WithLabelValues(task).Add(float64(items))
}

// ObserveSearchSource records one source's search outcome.
func (m *Metrics) ObserveSearchSource(outcome string) {
	m.SearchSources.WithLabelValues(outcome).Inc()
}

// ObserveTocPages records the page count of one toc crawl.
func (m *Metrics) ObserveTocPages(pages int) {
	m.TocPages.Observe(float64(pages))
}
