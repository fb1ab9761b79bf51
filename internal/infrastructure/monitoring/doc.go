// Package monitoring collects Prometheus metrics for the reader service.
//
// Each Metrics value owns a private registry, so tests and multiple servers
// in one process never collide. Metrics also implements the fetch client's
// Observer and the book service's Observer, which is how outbound fetches,
// breaker transitions and extraction counts reach /metrics.
//
// Metric families:
//   - reader_http_*: inbound requests by route and status
//   - reader_service_*: book service calls
//   - reader_fetch*: outbound fetches by host and outcome, breaker state
//   - reader_extracted_items_total, reader_search_sources_total, reader_toc_pages
//   - reader_ws_*: streaming search connections and messages
package monitoring
