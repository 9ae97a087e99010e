package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/medecho/clinical-scheduling/internal/appointment"
	"github.com/medecho/clinical-scheduling/internal/config"
	"github.com/medecho/clinical-scheduling/internal/db"
	"github.com/medecho/clinical-scheduling/internal/logger"
	"github.com/medecho/clinical-scheduling/internal/notification"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	zlog, err := logger.NewZapLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer zlog.Sync()

	zlog.Info("reminder-worker starting up",
		zap.String("env", cfg.Env),
		zap.Duration("interval", cfg.ReminderInterval),
	)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		zlog.Fatal("postgres connection error", zap.Error(err))
	}
	defer pgPool.Close()
	zlog.Info("connected to Postgres")

	apptRepo := appointment.NewPgRepository(pgPool)
	notifRepo := notification.NewPgRepository(pgPool)
	svc := notification.NewReminderService(apptRepo, notifRepo, zlog)

	// Run once at startup so a restarted worker never misses a window.
	runOnce(rootCtx, svc, zlog)

	ticker := time.NewTicker(cfg.ReminderInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rootCtx.Done():
			zlog.Info("shutdown signal received, stopping reminder worker")
			return
		case <-ticker.C:
			runOnce(rootCtx, svc, zlog)
		}
	}
}

func runOnce(ctx context.Context, svc *notification.ReminderService, zlog *zap.Logger) {
	runCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	start := time.Now()
	sent, err := svc.RunOnce(runCtx)
	if err != nil {
		zlog.Error("reminder run error", zap.Error(err))
		return
	}
	zlog.Info("reminder run complete",
		zap.Int("sent", sent),
		zap.Duration("took", time.Since(start)),
	)
}
