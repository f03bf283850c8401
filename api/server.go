// Package api - Thin HTTP layer over the quoting engine.
// The API is only responsible for input ingestion, engine orchestration and
// output serialization. It never performs cost logic.
package api

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"shipping-rules/adapters/storage"
	"shipping-rules/adapters/webhook"
	"shipping-rules/core/engine"
	"shipping-rules/core/method"
	"shipping-rules/internal/config"
	"shipping-rules/internal/errors"
	"shipping-rules/internal/logging"
	"shipping-rules/internal/metrics"
)

func init() {
	// keep numeric JSON values exact for decimal conversion
	binding.EnableDecoderUseNumber = true
}

// SettingsNotifier is told about settings changes after they are stored
type SettingsNotifier interface {
	Notify(ctx context.Context, event *webhook.Event) error
}

// Options wires the server's dependencies. Zero values get sensible defaults.
type Options struct {
	Version  string
	Config   *config.Config
	Store    storage.Store
	Registry *method.Registry
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Notifier SettingsNotifier
	Logger   *zap.Logger
}

// Server is the API server
type Server struct {
	router   *gin.Engine
	quoter   *engine.Engine
	store    storage.Store
	registry *method.Registry
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
	notifier SettingsNotifier
	cfg      *config.Config
	logger   *zap.Logger
	version  string
}

// NewServer creates a new API server
func NewServer(opts Options) *Server {
	if opts.Config == nil {
		opts.Config = config.Get()
	}
	if opts.Store == nil {
		opts.Store = storage.NewMemoryStore()
	}
	if opts.Registry == nil {
		opts.Registry = method.GetDefaultRegistry()
	}
	if opts.Logger == nil {
		opts.Logger = logging.Logger
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}

	if opts.Config.Server.Mode != "" {
		gin.SetMode(opts.Config.Server.Mode)
	}

	quoter := engine.New(storage.Provider{Store: opts.Store}, opts.Registry, engine.Config{
		Currency:        opts.Config.Pricing.Currency,
		DefaultInstance: opts.Config.Pricing.DefaultInstance,
	})
	if opts.Metrics != nil {
		quoter.WithObserver(opts.Metrics)
	}

	s := &Server{
		router:   gin.New(),
		quoter:   quoter,
		store:    opts.Store,
		registry: opts.Registry,
		metrics:  opts.Metrics,
		gatherer: opts.Gatherer,
		notifier: opts.Notifier,
		cfg:      opts.Config,
		logger:   opts.Logger,
		version:  opts.Version,
	}

	s.registerRoutes()
	return s
}

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	s.router.Use(RequestID(), Recovery(s.logger), AccessLog(s.logger))
	if s.metrics != nil {
		s.router.Use(Metrics(s.metrics))
	}

	// Core endpoints
	v1 := s.router.Group("/v1")
	v1.POST("/quote", s.handleQuote)
	v1.GET("/methods", s.handleListMethods)
	v1.GET("/fields", s.handleFields)
	v1.GET("/instances", s.handleListInstances)
	v1.GET("/instances/:id/settings", s.handleGetSettings)
	v1.PUT("/instances/:id/settings", s.handlePutSettings)
	v1.DELETE("/instances/:id/settings", s.handleDeleteSettings)

	// Supporting endpoints
	s.router.GET("/health", s.handleHealth)
	s.router.GET("/version", s.handleVersion)
	if s.cfg.Metrics.Enabled {
		s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
	}
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run serves on the configured address until ctx is cancelled
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Server.Address,
		Handler:      s,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", srv.Addr), zap.String("version", s.version))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) writeError(c *gin.Context, err error) {
	e, ok := errors.As(err)
	if !ok {
		e = errors.Internal("internal error", err)
	}

	status := http.StatusInternalServerError
	detail := ErrorDetail{Code: string(e.Type), Message: e.Message, Context: e.Context}
	switch e.Type {
	case errors.TypeInput:
		status = http.StatusBadRequest
		detail.Code = "VALIDATION_ERROR"
	case errors.TypeNotFound:
		status = http.StatusNotFound
	case errors.TypeNotSupported:
		status = http.StatusBadRequest
	case errors.TypeConflict:
		status = http.StatusConflict
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.Error(err),
		)
	}

	c.JSON(status, ErrorResponse{Error: detail, RequestID: c.GetString(requestIDKey)})
}
