// Package server exposes the task pipeline over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/semaphore"

	"factotum/internal/config"
	"factotum/internal/dispatch"
	"factotum/internal/logging"
)

// Server wraps the gin engine and the underlying http.Server. Task execution
// is delegated to the pipeline; the server only handles transport concerns:
// auth, CORS, concurrency admission and error mapping.
type Server struct {
	pipeline   *dispatch.Pipeline
	engine     *gin.Engine
	httpServer *http.Server
	logger     logging.Logger
	slots      *semaphore.Weighted
	startTime  time.Time
}

// Options configures the HTTP front end.
type Options struct {
	Host           string
	Port           int
	APIToken       string
	AllowedOrigins []string
	MaxConcurrent  int
	Debug          bool

	// Gatherer backs the /metrics endpoint; nil uses the default registry.
	Gatherer prometheus.Gatherer
}

// New builds the server and registers all routes.
func New(pipeline *dispatch.Pipeline, logger logging.Logger, opts Options) *Server {
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = config.DefaultMaxConcurrent
	}
	if !opts.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if len(opts.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = opts.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	engine.Use(cors.New(corsConfig))

	s := &Server{
		pipeline:  pipeline,
		engine:    engine,
		logger:    logging.OrNop(logger),
		slots:     semaphore.NewWeighted(int64(opts.MaxConcurrent)),
		startTime: time.Now(),
	}

	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	engine.GET("/healthz", s.handleHealth)
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	api := engine.Group("/api")
	if opts.APIToken != "" {
		api.Use(bearerAuth(opts.APIToken))
	}
	api.POST("/tasks", s.handleSubmitTask)

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", opts.Host, opts.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Start blocks serving requests until the listener fails or Shutdown runs.
func (s *Server) Start() error {
	s.logger.Info("http server listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http server shutting down")
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the underlying handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}
