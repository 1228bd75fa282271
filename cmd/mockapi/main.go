// Command mockapi runs the mock data service backing the demo remotes.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/MFE-Works/shell_layer/internal/config"
	"github.com/MFE-Works/shell_layer/internal/metrics"
	"github.com/MFE-Works/shell_layer/internal/middleware"
	"github.com/MFE-Works/shell_layer/internal/mockapi"
	"github.com/MFE-Works/shell_layer/internal/system"
	"github.com/MFE-Works/shell_layer/pkg/logger"
)

func main() {
	_ = godotenv.Load()
	log := logger.NewDefault("mockapi")

	cfg := config.LoadOrDefault()

	store := mockapi.NewStore(mockapi.StoreOptions{
		Users: cfg.MockAPI.SeedUsers,
		Rows:  cfg.MockAPI.SeedRows,
		Seed:  time.Now().UnixNano(),
	})
	authStore := mockapi.NewAuthStore()
	tokens := mockapi.NewTokenIssuer(
		cfg.Auth.SecretKey,
		cfg.Auth.RefreshSecretKey,
		cfg.Auth.AccessTokenTTL(),
		cfg.Auth.RefreshTokenTTL(),
	)

	_, apiHandler := mockapi.NewHandler(store, authStore, tokens, log)

	var handler http.Handler = apiHandler
	if cfg.MockAPI.Delay() > 0 {
		handler = middleware.Delay(cfg.MockAPI.Delay())(handler)
	}
	if cfg.MockAPI.RateLimitRPS > 0 {
		limiter := middleware.NewRateLimiter(cfg.MockAPI.RateLimitRPS, cfg.MockAPI.RateLimitBurst, log)
		handler = limiter.Handler(handler)
	}
	handler = middleware.NewCORSMiddleware(cfg.MockAPI.CORSOrigins).Handler(handler)
	handler = middleware.RequestID(handler)
	handler = metrics.InstrumentHandler(handler)

	maintenance, err := mockapi.NewMaintenance(store, log)
	if err != nil {
		log.WithError(err).Error("maintenance setup failed")
		os.Exit(1)
	}

	mgr := system.NewManager()
	for _, svc := range []system.Service{
		maintenance,
		system.NewHTTPServer("mockapi", cfg.MockAPI.Listen, handler, log),
	} {
		if err := mgr.Register(svc); err != nil {
			log.WithError(err).Error("service registration failed")
			os.Exit(1)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := mgr.StartAll(ctx); err != nil {
		log.WithError(err).Error("startup failed")
		os.Exit(1)
	}
	log.Infof("mock API ready on %s", cfg.MockAPI.Listen)

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := mgr.StopAll(shutdownCtx); err != nil {
		log.WithError(err).Warn("shutdown incomplete")
	}
}
