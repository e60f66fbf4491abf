// README: HTTP router registration.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"packwise/internal/http/handlers"
	"packwise/internal/http/middleware"
	"packwise/internal/infra"
)

// ServerDeps lists what the router needs. Quota, History and Verifier may be
// nil; the routes they back then answer 404 or 401.
type ServerDeps struct {
	Resolver handlers.Resolver
	Advisor  handlers.Advisor
	Planner  handlers.Planner
	Quota    handlers.Quota
	History  handlers.History
	Verifier infra.TokenVerifier
	Logger   *zap.Logger
}

func NewRouter(deps ServerDeps) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(middleware.Recovery(logger), middleware.Logging(logger))

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	resolveHandler := handlers.NewResolveHandler(deps.Resolver, deps.Quota, deps.History)
	outfitHandler := handlers.NewOutfitHandler(deps.Advisor)
	tripHandler := handlers.NewTripHandler(deps.Planner, deps.Quota)

	api := r.Group("/api", middleware.Auth(deps.Verifier, false))
	api.POST("/resolve", resolveHandler.Resolve)
	api.POST("/outfits", outfitHandler.Advise)
	api.POST("/trips/plan", tripHandler.Plan)

	private := r.Group("/api", middleware.Auth(deps.Verifier, true))
	private.GET("/quota", resolveHandler.Remaining)
	private.GET("/resolutions", resolveHandler.List)
	private.GET("/resolutions/:id", resolveHandler.Get)

	return r
}
