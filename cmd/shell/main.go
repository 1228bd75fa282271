// Command shell runs the host application: the navigation frame that
// mounts every configured remote behind its own boundary.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/MFE-Works/shell_layer/internal/config"
	"github.com/MFE-Works/shell_layer/internal/loader"
	"github.com/MFE-Works/shell_layer/internal/shell"
	"github.com/MFE-Works/shell_layer/internal/system"
	"github.com/MFE-Works/shell_layer/pkg/logger"
)

func main() {
	_ = godotenv.Load()
	log := logger.NewDefault("shell")

	cfg := config.LoadOrDefault()
	reg, err := cfg.BuildRegistry()
	if err != nil {
		log.WithError(err).Error("invalid remote configuration")
		os.Exit(1)
	}

	sh, err := shell.New(cfg, reg, loader.New(log), log)
	if err != nil {
		log.WithError(err).Error("shell construction failed")
		os.Exit(1)
	}

	mgr := system.NewManager()
	if err := mgr.Register(system.NewHTTPServer("shell", cfg.Shell.Listen, sh.Handler(), log)); err != nil {
		log.WithError(err).Error("service registration failed")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := mgr.StartAll(ctx); err != nil {
		log.WithError(err).Error("startup failed")
		os.Exit(1)
	}

	// Remote mounts outlive individual requests; they end at shutdown.
	mountCtx, cancelMounts := context.WithCancel(context.Background())
	sh.MountAll(mountCtx)
	log.Infof("shell ready with %d remotes", reg.Len())

	<-ctx.Done()
	log.Info("shutting down")

	sh.UnmountAll()
	cancelMounts()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := mgr.StopAll(shutdownCtx); err != nil {
		log.WithError(err).Warn("shutdown incomplete")
	}
}
