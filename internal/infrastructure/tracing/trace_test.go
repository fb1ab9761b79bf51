package tracing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestStartSpan(t *testing.T) {
	tracer := New("test", nil)
	defer tracer.Close()

	root, ctx := tracer.StartSpan(context.Background(), "root")
	assert.NotEmpty(t, root.TraceID)
	assert.Empty(t, root.ParentID)

	child, ctx := tracer.StartSpan(ctx, "child")
	assert.Equal(t, root.TraceID, child.TraceID)
	assert.Equal(t, root.SpanID, child.ParentID)
	assert.Equal(t, child.SpanID, GetSpanID(ctx))
}

func TestTraceLogsFailures(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	tracer := New("test", zap.New(core))

	boom := errors.New("boom")
	err := tracer.Trace(context.Background(), "search", func(ctx context.Context) error {
		assert.NotEmpty(t, GetTraceID(ctx))
		return boom
	})
	assert.ErrorIs(t, err, boom)
	require.NoError(t, tracer.Trace(context.Background(), "toc", func(context.Context) error { return nil }))

	tracer.Close()
	tracer.Submit(&Span{}) // after close: dropped

	require.Equal(t, 2, logs.Len())
	entries := logs.All()
	assert.Equal(t, "span completed with error", entries[0].Message)
	assert.Equal(t, "span completed", entries[1].Message)
}

func TestHTTPMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tracer := New("test", nil)
	defer tracer.Close()

	var seen TraceID
	r := gin.New()
	r.Use(HTTPMiddleware(tracer))
	r.GET("/api/health", func(c *gin.Context) {
		seen = GetTraceID(c.Request.Context())
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.NotEmpty(t, w.Header().Get(HeaderTraceID))
	assert.NotEmpty(t, w.Header().Get(HeaderSpanID))
	assert.Equal(t, TraceID(w.Header().Get(HeaderTraceID)), seen)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set(HeaderTraceID, "trace-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "trace-123", w.Header().Get(HeaderTraceID))
	assert.Equal(t, TraceID("trace-123"), seen)
}
