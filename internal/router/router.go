package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"customsdesk/internal/handler"
	"customsdesk/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	logger *zap.Logger,
	allowedOrigins []string,
	declarationH *handler.DeclarationHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(allowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	declarations := v1.Group("/declarations")
	declarations.POST("", declarationH.Create)
	declarations.POST("/from-storage", declarationH.CreateFromStorage)

	return r
}
