package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/volleyball-scoreboard/internal/config"
	"github.com/maxviazov/volleyball-scoreboard/internal/handler"
	"github.com/maxviazov/volleyball-scoreboard/internal/live"
	"github.com/maxviazov/volleyball-scoreboard/internal/logger"
	"github.com/maxviazov/volleyball-scoreboard/internal/service"
	"github.com/maxviazov/volleyball-scoreboard/internal/session"
)

func main() {
	// Load application config
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("❌ Config loading failed: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.New(&cfg.Logger)
	if err != nil {
		log.Fatalf("❌ Logger initialization failed: %v", err)
	}
	appLogger.Info().Str("storage", cfg.Storage.Driver).Str("sessions", cfg.Session.Backend).Msg("✅ Config loaded")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, err := openStorage(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("❌ Storage initialization failed")
	}
	defer stores.close()

	sessions, err := openSessionStore(ctx, cfg)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("❌ Session store initialization failed")
	}
	defer sessions.close()

	publishers, closePublishers, err := openPublishers(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("❌ Live publishers initialization failed")
	}
	defer closePublishers()

	broadcaster := live.NewBroadcaster(appLogger, publishers...)
	recorder := service.NewMatchRecorder(stores.matches, stores.stats, stores.players, stores.tx, appLogger)
	history := service.NewHistoryService(stores.matches, stores.stats, stores.players, appLogger)
	services := handler.Services{
		Scoreboard: service.NewScoreboardService(session.NewManager(sessions.store, sessions.opts...), recorder, broadcaster, appLogger),
		History:    history,
		Scorecards: service.NewScorecardService(history, appLogger),
	}

	if cfg.App.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), handler.RequestLogger(appLogger))
	handler.Register(r, handler.Pingers{stores.pinger, sessions.pinger}, services, handler.Options{
		CookieName:  cfg.Session.CookieName,
		CookieTTL:   cfg.Session.TTL,
		CORSOrigins: cfg.HTTP.CORSOrigins,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.App.Port),
		Handler: r,
	}
	go func() {
		appLogger.Info().Int("port", cfg.App.Port).Msg("🚀 Service started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error().Err(err).Msg("http server failed")
			stop()
		}
	}()

	<-ctx.Done()
	appLogger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error().Err(err).Msg("graceful shutdown failed")
	}
}
