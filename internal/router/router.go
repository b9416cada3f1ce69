package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pageza/recipes-api/internal/api"
	"github.com/pageza/recipes-api/internal/middleware"
	"github.com/pageza/recipes-api/internal/store"
)

// Options are the dependencies of the HTTP routes
type Options struct {
	Store       store.RecipeStore
	Logger      logrus.FieldLogger
	CORSOrigins []string

	// Limiter is optional; nil disables rate limiting
	Limiter middleware.Limiter

	// Metrics and MetricsHandler are optional; MetricsHandler is served on /metrics
	Metrics        *middleware.Metrics
	MetricsHandler http.Handler
}

// SetupRouter configures the application routes
func SetupRouter(opts Options) *gin.Engine {
	router := gin.New()

	// recovery sits inside the logger and metrics so panics are logged and counted as 500s
	router.Use(middleware.RequestLogger(opts.Logger))
	if opts.Metrics != nil {
		router.Use(opts.Metrics.Handler())
	}
	router.Use(middleware.ErrorHandler(opts.Logger))
	router.Use(middleware.CORS(opts.CORSOrigins))

	if opts.Limiter != nil {
		router.GET("/health", middleware.RateLimitStatus(opts.Limiter, opts.Logger), api.Health(opts.Store))
	} else {
		router.GET("/health", api.Health(opts.Store))
	}
	if opts.MetricsHandler != nil {
		router.GET("/metrics", gin.WrapH(opts.MetricsHandler))
	}

	recipeHandler := api.NewRecipeHandler(opts.Store, opts.Logger)

	root := router.Group("")
	v1 := router.Group("/api/v1")
	if opts.Limiter != nil {
		limit := middleware.RateLimit(opts.Limiter, opts.Logger)
		root.Use(limit)
		v1.Use(limit)
	}
	recipeHandler.RegisterRoutes(root)
	recipeHandler.RegisterRoutes(v1)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, middleware.ErrorResponse{Error: "not found"})
	})

	return router
}
