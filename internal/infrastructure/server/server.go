package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	apihttp "github.com/GriffinCanCode/ReaderOS/backend/internal/api/http"
	"github.com/GriffinCanCode/ReaderOS/backend/internal/api/middleware"
	"github.com/GriffinCanCode/ReaderOS/backend/internal/api/ws"
	"github.com/GriffinCanCode/ReaderOS/backend/internal/domain/book"
	"github.com/GriffinCanCode/ReaderOS/backend/internal/domain/source"
	"github.com/GriffinCanCode/ReaderOS/backend/internal/engine"
	"github.com/GriffinCanCode/ReaderOS/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/ReaderOS/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/ReaderOS/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/ReaderOS/backend/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/ReaderOS/backend/internal/providers/http/client"
)

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 10 * time.Second

// Server wraps the HTTP server and dependencies
type Server struct {
	router  *gin.Engine
	http    *http.Server
	store   *source.SQLiteStore
	sources *source.Manager
	fetcher *client.Client
	tracer  *tracing.Tracer
	logger  *logging.Logger
	config  *config.Config
	metrics *monitoring.Metrics
}

// NewServer creates a new server instance
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
		OutputPaths: []string{"stdout"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return newServer(ctx, cfg, logger)
}

func newServer(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*Server, error) {
	logger.Info("Initializing ReaderOS server",
		zap.String("port", cfg.Server.Port),
		zap.String("db", cfg.Storage.Path),
	)

	engine.SetLogger(logger.Component("engine"))

	// Metrics first, other components report into them
	metrics := monitoring.NewMetrics()
	tracer := tracing.New("reader", logger.Component("trace"))

	store, err := source.OpenSQLite(ctx, cfg.Storage.Path)
	if err != nil {
		tracer.Close()
		return nil, fmt.Errorf("failed to open source store: %w", err)
	}
	sources := source.NewManager(store, logger.Component("sources"))

	if cfg.Sources.Dir != "" {
		seeder := source.NewSeeder(sources, cfg.Sources.Dir, cfg.Sources.Glob, logger.Component("seeder"))
		if _, err := seeder.Seed(ctx); err != nil {
			logger.Warn("Failed to seed sources", zap.String("dir", cfg.Sources.Dir), zap.Error(err))
		}
	}

	fetcher := client.NewClient(client.Config{
		Timeout:      cfg.Fetch.Timeout,
		MaxRedirects: cfg.Fetch.MaxRedirects,
		Retries:      cfg.Fetch.Retries,
		UserAgent:    cfg.Fetch.UserAgent,
		RPS:          cfg.Fetch.RPS,
	}, logger.Logger)
	fetcher.SetObserver(metrics)

	bookCfg := book.Config{
		SearchConcurrency: cfg.Search.Concurrency,
		TocMaxPages:       cfg.Crawl.TocMaxPages,
	}
	if cfg.Content.Sanitize {
		bookCfg.Sanitizer = bluemonday.UGCPolicy()
	}
	books := book.NewService(sources, fetcher, bookCfg, logger.Component("book"))
	books.SetObserver(metrics)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	// Source ids are escaped URLs; route on the raw path so "%2F" stays
	// inside one segment.
	router.UseRawPath = true
	router.UnescapePathValues = false

	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.AccessLog(logger.Component("http")))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	handlers := apihttp.NewHandlers(sources, books, fetcher, metrics, logger.Component("api"))
	handlers.Register(router)

	wsHandler := ws.NewHandler(books, metrics, tracer, logger.Component("ws"))
	router.GET("/api/search/stream", wsHandler.HandleConnection)

	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	logger.Info("Server initialized successfully")

	return &Server{
		router: router,
		http: &http.Server{
			Addr:              net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		store:   store,
		sources: sources,
		fetcher: fetcher,
		tracer:  tracer,
		logger:  logger,
		config:  cfg,
		metrics: metrics,
	}, nil
}

// Handler returns the configured router
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run starts the HTTP server and blocks until it stops. A server stopped
// by Close returns nil.
func (s *Server) Run() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close gracefully shuts down the server
func (s *Server) Close() error {
	s.logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	if err := s.http.Shutdown(ctx); err != nil {
		s.logger.Error("Failed to shut down HTTP server", zap.Error(err))
		errs = append(errs, fmt.Errorf("failed to shut down http server: %w", err))
	}
	if err := s.store.Close(); err != nil {
		s.logger.Error("Failed to close source store", zap.Error(err))
		errs = append(errs, fmt.Errorf("failed to close source store: %w", err))
	}
	s.tracer.Close()

	// Sync logger before exit
	_ = s.logger.Sync()

	return errors.Join(errs...)
}
