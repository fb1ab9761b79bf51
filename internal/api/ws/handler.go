package ws

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/GriffinCanCode/ReaderOS/backend/internal/domain/book"
	"github.com/GriffinCanCode/ReaderOS/backend/internal/domain/source"
	"github.com/GriffinCanCode/ReaderOS/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/ReaderOS/backend/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/ReaderOS/backend/internal/shared/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// searchTimeout bounds one streamed search.
const searchTimeout = 2 * time.Minute

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message is a client request.
type Message struct {
	Type     string `json:"type"`
	Keyword  string `json:"keyword,omitempty"`
	SourceID string `json:"sourceId,omitempty"`
	Page     int    `json:"page,omitempty"`
}

// Searcher streams per-source search results.
type Searcher interface {
	SearchStream(ctx context.Context, keyword, sourceID string, page int, emit func(book.SourceResults)) error
}

// Handler manages WebSocket connections
type Handler struct {
	searcher Searcher
	metrics  *monitoring.Metrics
	tracer   *tracing.Tracer
	logger   *zap.Logger
}

// NewHandler creates a new WebSocket handler. metrics and tracer may be nil.
func NewHandler(searcher Searcher, metrics *monitoring.Metrics, tracer *tracing.Tracer, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		searcher: searcher,
		metrics:  metrics,
		tracer:   tracer,
		logger:   logger,
	}
}

// conn serializes writes to one socket. At most one search runs per
// connection.
type conn struct {
	ws        *websocket.Conn
	id        string
	mu        sync.Mutex
	searching atomic.Bool
}

// HandleConnection handles WebSocket upgrade and messages
func (h *Handler) HandleConnection(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	cn := &conn{ws: ws, id: uuid.NewString()}
	defer ws.Close()

	if h.metrics != nil {
		h.metrics.IncWSConnections()
		defer h.metrics.DecWSConnections()
	}
	logger := h.logger.With(zap.String("conn", cn.id))
	logger.Debug("WebSocket connected")

	ctx, cancel := context.WithCancel(c.Request.Context())
	var searches sync.WaitGroup
	defer searches.Wait()
	defer cancel()

	h.send(cn, gin.H{
		"type":         "system",
		"message":      "connected",
		"connectionId": cn.id,
	})

	for {
		var msg Message
		if err := ws.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug("WebSocket read ended", zap.Error(err))
			}
			return
		}
		h.record("in", msg.Type)

		switch msg.Type {
		case "search":
			if !cn.searching.CompareAndSwap(false, true) {
				h.sendError(cn, "search already in progress")
				continue
			}
			searches.Add(1)
			go func() {
				defer searches.Done()
				final := h.handleSearch(ctx, cn, msg)
				cn.searching.Store(false)
				h.send(cn, final)
			}()
		case "ping":
			h.send(cn, gin.H{"type": "pong"})
		default:
			h.sendError(cn, "unknown message type")
		}
	}
}

// handleSearch streams results and returns the closing message, either
// "complete" or an error.
func (h *Handler) handleSearch(reqCtx context.Context, cn *conn, msg Message) gin.H {
	if err := utils.ValidateKeyword(strings.TrimSpace(msg.Keyword)); err != nil {
		return errorMessage(err.Error())
	}

	ctx, cancel := context.WithTimeout(reqCtx, searchTimeout)
	defer cancel()

	page := msg.Page
	if page < 1 {
		page = 1
	}

	total := 0
	run := func(ctx context.Context) error {
		return h.searcher.SearchStream(ctx, msg.Keyword, msg.SourceID, page, func(r book.SourceResults) {
			results := r.Results
			if results == nil {
				results = []book.SearchResult{}
			}
			total += len(results)
			h.send(cn, gin.H{
				"type":      "results",
				"sourceId":  r.SourceID,
				"results":   results,
				"timestamp": time.Now().Unix(),
			})
		})
	}

	var err error
	if h.tracer != nil {
		err = h.tracer.Trace(ctx, "ws.search", run)
	} else {
		err = run(ctx)
	}
	if err != nil {
		switch {
		case errors.Is(err, book.ErrMissingParam):
			return errorMessage("keyword is required")
		case errors.Is(err, source.ErrNotFound):
			return errorMessage(source.ErrNotFound.Error())
		default:
			h.logger.Warn("Streamed search failed", zap.String("conn", cn.id), zap.Error(err))
			return errorMessage("search failed")
		}
	}

	return gin.H{
		"type":      "complete",
		"total":     total,
		"timestamp": time.Now().Unix(),
	}
}

func (h *Handler) send(cn *conn, data gin.H) error {
	cn.mu.Lock()
	defer cn.mu.Unlock()
	if err := cn.ws.WriteJSON(data); err != nil {
		return err
	}
	if t, ok := data["type"].(string); ok {
		h.record("out", t)
	}
	return nil
}

func (h *Handler) sendError(cn *conn, msg string) error {
	return h.send(cn, errorMessage(msg))
}

func errorMessage(msg string) gin.H {
	return gin.H{
		"type":      "error",
		"message":   msg,
		"timestamp": time.Now().Unix(),
	}
}

func (h *Handler) record(direction, msgType string) {
	if h.metrics != nil {
		h.metrics.RecordWSMessage(direction, msgType)
	}
}
