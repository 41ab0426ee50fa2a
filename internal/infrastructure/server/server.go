// Package server assembles the control API router and runs it.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	apihttp "github.com/GriffinCanCode/browserkit/internal/api/http"
	"github.com/GriffinCanCode/browserkit/internal/api/middleware"
	"github.com/GriffinCanCode/browserkit/internal/api/ws"
	"github.com/GriffinCanCode/browserkit/internal/infrastructure/config"
	"github.com/GriffinCanCode/browserkit/internal/infrastructure/logging"
	"github.com/GriffinCanCode/browserkit/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/browserkit/internal/infrastructure/tracing"
)

// shutdownTimeout bounds how long Run waits for in-flight requests.
const shutdownTimeout = 10 * time.Second

// Server wraps the HTTP server and its router
type Server struct {
	router *gin.Engine
	server *http.Server
	tracer *tracing.Tracer
	logger *logging.Logger
}

// NewServer builds the router: recovery, tracing, metrics, CORS and rate
// limiting, then the API routes, the state stream and /metrics served from gatherer.
func NewServer(
	cfg *config.Config,
	handlers *apihttp.Handlers,
	stream *ws.Handler,
	metrics *monitoring.Metrics,
	gatherer prometheus.Gatherer,
	logger *logging.Logger,
) *Server {
	logger = logging.OrNop(logger).Named("server")

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	tracer := tracing.New("api", logger)

	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
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

	handlers.Register(router)
	router.GET("/stream", stream.HandleConnection)
	if gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	addr := net.JoinHostPort(cfg.API.Host, cfg.API.Port)
	return &Server{
		router: router,
		server: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		tracer: tracer,
		logger: logger,
	}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", zap.String("addr", s.server.Addr))
		errc <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close flushes pending trace spans.
func (s *Server) Close() {
	s.tracer.Close()
}
