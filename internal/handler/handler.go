package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/avolkov/pingpong-stats-service/internal/service"
)

// Register mounts all public routes on the given engine.
// Accepts service layer dependencies for API endpoints.
func Register(r *gin.Engine, repo Pinger, playerSvc service.PlayerService, modeSvc service.ModeService, matchSvc service.MatchService, statsSvc service.StatsService, bindingSvc service.BindingService) {
	h := NewHealthHandler(repo)

	// Health probes
	r.GET("/live", h.Liveness)
	r.GET("/ready", h.Readiness)

	// Docs endpoints (root-level)
	RegisterDocs(r)

	api := r.Group(APIV1Prefix) // Versioning added via single source of truth
	{
		health := api.Group("/health")
		{
			health.GET("/live", h.Liveness)
			health.GET("/ready", h.Readiness)
		}
		NewPlayerHandler(playerSvc, statsSvc, matchSvc).Register(api)
		NewModeHandler(modeSvc).Register(api)
		NewMatchHandler(matchSvc).Register(api)
		NewBindingHandler(bindingSvc).Register(api)
	}
}
