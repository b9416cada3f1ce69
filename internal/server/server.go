package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/pageza/recipes-api/config"
	"github.com/pageza/recipes-api/internal/middleware"
	"github.com/pageza/recipes-api/internal/router"
	"github.com/pageza/recipes-api/internal/store"
)

// Server represents the HTTP server
type Server struct {
	cfg    *config.Config
	router *gin.Engine
	http   *http.Server
	store  store.RecipeStore
	logger logrus.FieldLogger
}

// Option customizes a Server
type Option func(*serverOptions)

type serverOptions struct {
	redis    *redis.Client
	registry *prometheus.Registry
}

// WithRedis makes rate limiting shared through Redis instead of per process
func WithRedis(client *redis.Client) Option {
	return func(o *serverOptions) { o.redis = client }
}

// WithRegistry registers metrics on reg instead of a fresh registry
func WithRegistry(reg *prometheus.Registry) Option {
	return func(o *serverOptions) { o.registry = reg }
}

// New creates a new server instance serving s
func New(cfg *config.Config, s store.RecipeStore, logger logrus.FieldLogger, opts ...Option) *Server {
	o := &serverOptions{}
	for _, opt := range opts {
		opt(o)
	}

	if cfg.Environment.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	routerOpts := router.Options{
		Store:       s,
		Logger:      logger,
		CORSOrigins: cfg.CORSAllowedOrigins,
	}

	if cfg.RateLimitRequests > 0 {
		limitCfg := middleware.RateLimitConfig{
			Window:    cfg.RateLimitWindow,
			Limit:     cfg.RateLimitRequests,
			KeyPrefix: "rate_limit:recipes",
		}
		if o.redis != nil {
			routerOpts.Limiter = middleware.NewRateLimiter(o.redis, limitCfg)
		} else {
			routerOpts.Limiter = middleware.NewLocalRateLimiter(limitCfg)
		}
	}

	if cfg.MetricsEnabled {
		reg := o.registry
		if reg == nil {
			reg = prometheus.NewRegistry()
		}
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Name: "recipes_stored",
				Help: "Number of recipes currently in the store",
			}, func() float64 {
				n, err := s.Len(context.Background())
				if err != nil {
					return 0
				}
				return float64(n)
			}),
		)
		routerOpts.Metrics = middleware.NewMetrics(reg)
		routerOpts.MetricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	}

	r := router.SetupRouter(routerOpts)

	return &Server{
		cfg:    cfg,
		router: r,
		store:  s,
		logger: logger,
		http: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Handler exposes the routes, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens and serves until Shutdown is called. It returns nil after a
// clean shutdown.
func (s *Server) Start() error {
	s.logger.WithField("addr", s.http.Addr).Info("starting server")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")
	return s.http.Shutdown(ctx)
}
