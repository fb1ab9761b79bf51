/*
Package tracing provides lightweight request tracing.

Every HTTP request gets a span. An incoming X-Trace-ID (and X-Span-ID as the
parent) is continued; otherwise a new trace id is generated. Both ids are
echoed in the response headers so a client can quote them when reporting a
failed search or fetch.

Finished spans are buffered and logged by a background collector:
successful spans at debug level, failed ones at warn.

# Usage

	tracer := tracing.New("reader", logger)
	defer tracer.Close()
	router.Use(tracing.HTTPMiddleware(tracer))

	err := tracer.Trace(ctx, "search.stream", func(ctx context.Context) error {
		return svc.SearchStream(ctx, keyword, "", page, emit)
	})
*/
package tracing
