package main

import (
	"context"
	"errors"
	"fmt"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/avolkov/pingpong-stats-service/internal/config"
	"github.com/avolkov/pingpong-stats-service/internal/handler"
	"github.com/avolkov/pingpong-stats-service/internal/logger"
	"github.com/avolkov/pingpong-stats-service/internal/repository"
	"github.com/avolkov/pingpong-stats-service/internal/repository/postgres"
	"github.com/avolkov/pingpong-stats-service/internal/service"
)

func main() {
	cfg, err := config.Load("config.yaml")
	if err != nil {
		stdlog.Fatalf("config loading failed: %v", err)
	}

	appLogger, err := logger.New(&cfg.Logger)
	if err != nil {
		stdlog.Fatalf("logger initialization failed: %v", err)
	}

	ctx := context.Background()
	repo, err := repository.New(ctx, cfg, &appLogger)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("postgres connection failed")
	}
	defer repo.Close()

	if err := runMigrations(cfg.Postgres.MigrationsPath, repo.DSN()); err != nil {
		appLogger.Fatal().Err(err).Msg("migrations failed")
	}
	appLogger.Info().Msg("database schema up to date")

	pool := repo.Pool()
	tx := postgres.NewTxManager(pool)
	players := postgres.NewPlayerRepository(pool)
	modes := postgres.NewModeRepository(pool)
	matches := postgres.NewMatchRepository(pool)
	bindings := postgres.NewBindingRepository(pool)

	playerSvc := service.NewPlayerService(players, appLogger)
	modeSvc := service.NewModeService(modes, appLogger)
	matchSvc := service.NewMatchService(matches, players, modes, tx, appLogger)
	statsSvc := service.NewStatsService(matches, players, modes, appLogger)
	bindingSvc := service.NewBindingService(bindings, tx, appLogger)

	// A fresh install should be able to score a match without any setup.
	if err := modeSvc.EnsureDefaultModes(ctx); err != nil {
		appLogger.Fatal().Err(err).Msg("seeding default game modes failed")
	}

	if cfg.Logger.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	handler.Register(engine, postgres.NewPinger(pool), playerSvc, modeSvc, matchSvc, statsSvc, bindingSvc)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: engine,
	}

	go func() {
		appLogger.Info().Int("port", cfg.Server.Port).Msg("service started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// runMigrations applies pending "up" migrations; no pending migrations is not
// an error.
func runMigrations(path, dsn string) error {
	m, err := migrate.New("file://"+path, dsn)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
