package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/stemsi/majorcatalog/internal/config"
	"github.com/stemsi/majorcatalog/internal/handler"
	"github.com/stemsi/majorcatalog/internal/middleware"
	"github.com/stemsi/majorcatalog/internal/page"
	"github.com/stemsi/majorcatalog/internal/response"
)

// CatalogHandlers groups the handlers of the catalog API.
type CatalogHandlers struct {
	Major  *handler.MajorHandler
	Health *handler.HealthHandler
}

// SetupCatalogRouter configures the catalog API consumed by the detail site.
func SetupCatalogRouter(handlers *CatalogHandlers, limiter *middleware.RateLimiter, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Accept", "Content-Type", response.HeaderRequestID}
	corsConfig.ExposeHeaders = []string{response.HeaderRequestID}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.Brotli())

	router.GET("/health", handlers.Health.Health)

	api := router.Group("/api")
	if limiter != nil {
		api.Use(limiter.Middleware())
	}
	{
		api.GET("/majors", handlers.Major.List)
		api.GET("/majors/:id", handlers.Major.GetByID)
	}

	router.NoRoute(func(c *gin.Context) {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	})

	return router
}

// WebHandlers groups the handlers of the detail site.
type WebHandlers struct {
	Detail *handler.DetailHandler
	Health *handler.HealthHandler
}

// SetupWebRouter configures the server-rendered detail site.
func SetupWebRouter(handlers *WebHandlers, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()
	router.SetHTMLTemplate(page.MustTemplates())

	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.Brotli())

	router.GET("/health", handlers.Health.Health)

	detail := router.Group("/detail")
	detail.Use(middleware.NoStore(), middleware.Viewer())
	{
		detail.GET("/:id", handlers.Detail.Page)
		detail.GET("/:id/state", handlers.Detail.State)
		detail.GET("/:id/events", handlers.Detail.Events)
	}

	return router
}
