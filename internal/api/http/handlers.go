package http

import (
	"net/http"

	"github.com/GriffinCanCode/ReaderOS/backend/internal/domain/book"
	"github.com/GriffinCanCode/ReaderOS/backend/internal/domain/source"
	"github.com/GriffinCanCode/ReaderOS/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/ReaderOS/backend/internal/infrastructure/resilience"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BreakerReporter exposes the fetch client's per-host breaker states.
type BreakerReporter interface {
	BreakerStates() map[string]resilience.State
}

// Handlers contains all HTTP handlers
type Handlers struct {
	sources  *source.Manager
	books    *book.Service
	breakers BreakerReporter
	metrics  *monitoring.Metrics
	tracked  *HandlerMetrics
	logger   *zap.Logger
}

// NewHandlers creates a new handler set. metrics and breakers may be nil.
func NewHandlers(
	sources *source.Manager,
	books *book.Service,
	breakers BreakerReporter,
	metrics *monitoring.Metrics,
	logger *zap.Logger,
) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		sources:  sources,
		books:    books,
		breakers: breakers,
		metrics:  metrics,
		tracked:  NewHandlerMetrics(metrics),
		logger:   logger,
	}
}

// Register mounts every REST route on r.
func (h *Handlers) Register(r gin.IRouter) {
	r.GET("/", h.Root)

	api := r.Group("/api")
	api.GET("/health", h.Health)
	api.GET("/stats", h.Stats)

	sources := api.Group("/sources")
	sources.POST("/import", h.ImportSources)
	sources.GET("", h.ListSources)
	sources.DELETE("", h.DeleteSources)
	sources.GET("/:id", h.GetSource)
	sources.PUT("/:id", h.UpdateSource)
	sources.DELETE("/:id", h.DeleteSource)

	api.GET("/search", h.Search)

	books := api.Group("/book")
	books.GET("/info", h.BookInfo)
	books.GET("/toc", h.BookToc)
	books.GET("/content", h.BookContent)

	api.POST("/rules/test", h.TestRule)
}

// Root handles the service banner
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "ReaderOS Book Source Service",
		"version": "0.1.0",
	})
}

// Health handles liveness checks
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Stats reports request and fetch totals plus breaker states.
func (h *Handlers) Stats(c *gin.Context) {
	body := gin.H{}
	if h.metrics != nil {
		body["metrics"] = h.metrics.Snapshot()
	}
	breakers := map[string]string{}
	if h.breakers != nil {
		for host, state := range h.breakers.BreakerStates() {
			breakers[host] = state.String()
		}
	}
	body["breakers"] = breakers
	c.JSON(http.StatusOK, body)
}
