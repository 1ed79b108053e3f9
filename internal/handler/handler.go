package handler

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/maxviazov/volleyball-scoreboard/internal/service"
)

// Options carries the HTTP-facing settings of the API.
type Options struct {
	CookieName  string
	CookieTTL   time.Duration
	CORSOrigins []string
}

// Services groups the use cases exposed over HTTP.
type Services struct {
	Scoreboard service.ScoreboardService
	History    service.HistoryService
	Scorecards service.ScorecardService
}

// Register mounts all public routes on the given engine.
func Register(r *gin.Engine, pinger Pinger, svcs Services, opts Options) {
	if len(opts.CORSOrigins) > 0 {
		cfg := cors.DefaultConfig()
		cfg.AllowOrigins = opts.CORSOrigins
		cfg.AllowCredentials = true
		cfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}
		cfg.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", SessionHeader}
		r.Use(cors.New(cfg))
	}

	h := NewHealthHandler(pinger)
	r.GET("/live", h.Liveness)
	r.GET("/ready", h.Readiness)

	RegisterDocs(r)

	api := r.Group(APIV1Prefix)
	{
		health := api.Group("/health")
		{
			health.GET("/live", h.Liveness)
			health.GET("/ready", h.Readiness)
		}
		NewMatchHandler(svcs.Scoreboard, opts).Register(api)
		NewHistoryHandler(svcs.History, svcs.Scorecards).Register(api)
	}
}
