package routes

import (
	"net/http"

	"thingstodo/internal/adapter/http/cache"
	"thingstodo/internal/adapter/http/handler"
	"thingstodo/internal/adapter/http/middleware"
	"thingstodo/internal/core/telemetry"
	"thingstodo/pkg/config"
	"thingstodo/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const serviceName = "thingstodo"

type HandlersConfig struct {
	TodoHandler   *handler.TodoHandler
	HealthHandler *handler.HealthHandler
}

func SetupRouter(handlers HandlersConfig, metrics *telemetry.AppMetrics, log *logger.LokiLogger) *gin.Engine {
	return SetupRouterWithConfig(handlers, metrics, log, config.GetDefaultConfig())
}

func SetupRouterWithConfig(handlers HandlersConfig, metrics *telemetry.AppMetrics, log *logger.LokiLogger, cfg *config.AppConfig) *gin.Engine {
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(corsMiddleware(cfg.CORSAllowedOrigins))
	router.Use(otelgin.Middleware(serviceName))
	router.Use(middleware.CurrentMiddleware())
	router.Use(middleware.LoggingMiddleware(log))

	if metrics != nil {
		router.Use(middleware.MetricsMiddleware(metrics))
	}

	if handlers.HealthHandler != nil {
		router.GET("/healthz", handlers.HealthHandler.Health)
	}

	if handlers.TodoHandler != nil {
		api := router.Group("/api")

		if cfg.CacheEnabled {
			responseCache := cache.NewResponseCache(log.Logger.Logger, metrics)
			responseCache.SetConfig("/api/todos", cache.ResponseCacheConfig{TTL: cfg.CacheTTL, Enabled: true})
			api.Use(responseCache.CacheMiddleware())
		}

		setupTodoRoutes(api, handlers.TodoHandler)
	}

	return router
}

func setupTodoRoutes(api *gin.RouterGroup, todoHandler *handler.TodoHandler) {
	api.GET("/todos", todoHandler.GetAllTodos)
	api.POST("/todos", todoHandler.CreateTodo)
	api.DELETE("/todos/:id", todoHandler.DeleteByID)
}

// corsMiddleware adapts rs/cors to gin. Preflight requests are answered here.
func corsMiddleware(origins []string) gin.HandlerFunc {
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader, "X-Cache"},
	})

	return func(ctx *gin.Context) {
		c.HandlerFunc(ctx.Writer, ctx.Request)

		if ctx.Request.Method == http.MethodOptions && ctx.GetHeader("Access-Control-Request-Method") != "" {
			ctx.AbortWithStatus(http.StatusNoContent)
			return
		}

		ctx.Next()
	}
}
