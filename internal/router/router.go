package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/larder/backend/internal/api"
	"github.com/pageza/larder/backend/internal/metrics"
	"github.com/pageza/larder/backend/internal/middleware"
	"github.com/pageza/larder/backend/internal/service"
	"github.com/pageza/larder/backend/internal/wizard"
)

// Options collects what the router needs. Auth is only set for the JWT
// provider; Images and RateLimiter are optional.
type Options struct {
	Logger       *zap.Logger
	Metrics      *metrics.Metrics
	CORSOrigins  []string
	Tokens       service.TokenValidator
	Auth         service.IAuthService
	Recipes      service.IRecipeService
	GroceryLists service.IGroceryListService
	Images       service.IImageService
	Wizards      *wizard.Service
	RateLimiter  *middleware.RateLimiter
	HealthCheck  func() error
}

// SetupRouter configures the application routes
func SetupRouter(opts Options) *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.Recovery(opts.Logger),
		middleware.RequestLogger(opts.Logger, opts.Metrics),
		middleware.CORS(opts.CORSOrigins),
		middleware.ErrorHandler(opts.Logger),
	)

	router.GET("/healthz", api.HealthCheck(opts.HealthCheck))
	if opts.Metrics != nil {
		router.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}

	v1 := router.Group("/api/v1")

	if opts.Auth != nil {
		api.NewAuthHandler(opts.Auth).RegisterRoutes(v1)
	}

	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(opts.Tokens))
	if opts.RateLimiter != nil {
		protected.Use(opts.RateLimiter.Middleware())
	}
	{
		api.NewRecipeHandler(opts.Recipes, opts.Images).RegisterRoutes(protected)
		api.NewGroceryListHandler(opts.GroceryLists).RegisterRoutes(protected)
		api.NewStreamHandler(opts.Recipes, opts.GroceryLists, opts.Metrics, opts.Logger).RegisterRoutes(protected)
		api.NewWizardHandler(opts.Wizards).RegisterRoutes(protected)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	return router
}
