// Command remotehost serves the embedded example remote bundles.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/MFE-Works/shell_layer/internal/config"
	"github.com/MFE-Works/shell_layer/internal/remotehost"
	"github.com/MFE-Works/shell_layer/internal/system"
	"github.com/MFE-Works/shell_layer/pkg/logger"
)

func main() {
	_ = godotenv.Load()
	log := logger.NewDefault("remotehost")

	cfg := config.LoadOrDefault()

	host, err := remotehost.New(log)
	if err != nil {
		log.WithError(err).Error("remote host setup failed")
		os.Exit(1)
	}

	mgr := system.NewManager()
	if err := mgr.Register(system.NewHTTPServer("remotehost", cfg.RemoteHost.Listen, host.Router(), log)); err != nil {
		log.WithError(err).Error("service registration failed")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := mgr.StartAll(ctx); err != nil {
		log.WithError(err).Error("startup failed")
		os.Exit(1)
	}
	log.Infof("serving %d remotes on %s", len(host.Remotes()), cfg.RemoteHost.Listen)

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := mgr.StopAll(shutdownCtx); err != nil {
		log.WithError(err).Warn("shutdown incomplete")
	}
}
