package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/claim-ranker/internal/config"
	"github.com/jonesrussell/claim-ranker/internal/httpserver"
	"github.com/jonesrussell/claim-ranker/internal/logger"
)

// ServerOptions carries the probe hooks and metrics handler wired in by
// the bootstrap layer.
type ServerOptions struct {
	// Metrics serves GET /metrics when set.
	Metrics http.Handler
	// DatabasePing gates readiness; a failing ping makes /ready return 503.
	DatabasePing func() error
	// RedisPing is registered when events are enabled; failures degrade
	// readiness without failing it.
	RedisPing func() error
	// ProviderPings registers one degradable readiness check per named
	// upstream provider.
	ProviderPings map[string]func() error
}

// NewServer assembles the HTTP server: shared middleware, probe routes,
// and the claims API.
func NewServer(handler *Handler, cfg *config.Config, log logger.Logger, opts ServerOptions) *httpserver.Server {
	builder := httpserver.NewServerBuilder(cfg.Service.Name, cfg.Server.Port).
		WithLogger(log).
		WithDebug(cfg.Service.Debug).
		WithVersion(cfg.Service.Version).
		WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.IdleTimeout).
		WithRoutes(func(router *gin.Engine) {
			SetupServiceRoutes(router, handler, RouteOptions{
				JWTSecret: cfg.Auth.JWTSecret,
				Metrics:   opts.Metrics,
			})
		})

	if opts.DatabasePing != nil {
		builder.WithDatabaseHealthCheck(opts.DatabasePing)
	}
	if opts.RedisPing != nil {
		builder.WithRedisHealthCheck(opts.RedisPing)
	}
	for name, ping := range opts.ProviderPings {
		builder.WithProviderHealthCheck(name, ping)
	}

	return builder.Build()
}
