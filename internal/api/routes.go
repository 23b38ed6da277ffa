package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/claim-ranker/internal/httpserver"
)

// RouteOptions configures the service-specific routes.
type RouteOptions struct {
	// JWTSecret protects the /api/v1 group when non-empty.
	JWTSecret string
	// Metrics, when set, is served at GET /metrics.
	Metrics http.Handler
}

// SetupServiceRoutes configures service-specific API routes. Liveness
// and readiness routes are registered by the server builder.
func SetupServiceRoutes(router *gin.Engine, handler *Handler, opts RouteOptions) {
	if opts.Metrics != nil {
		router.GET("/metrics", gin.WrapH(opts.Metrics))
	}

	v1 := httpserver.ProtectedGroup(router, "/api/v1", opts.JWTSecret)

	claims := v1.Group("/claims")
	claims.POST("", handler.SubmitClaim)
	claims.GET("", handler.ListByStatus)
	claims.GET("/recent", handler.ListRecent)
	claims.GET("/range", handler.ListByRange)
	claims.GET("/open-last-hour", handler.ListOpenLastHour)
	claims.POST("/:id/close", handler.CloseClaim)
}
