package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/medecho/clinical-scheduling/internal/api"
	"github.com/medecho/clinical-scheduling/internal/appointment"
	"github.com/medecho/clinical-scheduling/internal/assistant"
	"github.com/medecho/clinical-scheduling/internal/auth"
	"github.com/medecho/clinical-scheduling/internal/config"
	"github.com/medecho/clinical-scheduling/internal/db"
	"github.com/medecho/clinical-scheduling/internal/logger"
	"github.com/medecho/clinical-scheduling/internal/notification"
	redisclient "github.com/medecho/clinical-scheduling/internal/redis"
	"github.com/medecho/clinical-scheduling/internal/report"
	"github.com/medecho/clinical-scheduling/internal/user"
)

const version = "1.0.0"

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

	zlog.Info("api-server starting up",
		zap.String("env", cfg.Env),
		zap.String("http_port", cfg.HTTPPort),
		zap.String("version", version),
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

	rdb, err := redisclient.NewRedisClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
	if err != nil {
		zlog.Fatal("redis connection error", zap.Error(err))
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			zlog.Warn("error closing redis", zap.Error(err))
		}
	}()
	zlog.Info("connected to Redis")

	userRepo := user.NewPgRepository(pgPool)
	apptRepo := appointment.NewPgRepository(pgPool)
	reportRepo := report.NewPgRepository(pgPool)
	notifRepo := notification.NewPgRepository(pgPool)

	locker := redisclient.NewRedisBookingLocker(rdb, cfg.LockTTL)
	sessions := auth.NewManager(cfg.JWTSecret, cfg.SessionTTL, auth.NewRedisRevocationStore(rdb))

	users := user.NewService(userRepo, zlog)
	appts := appointment.NewService(apptRepo, userRepo, locker, zlog)

	if cfg.GeminiAPIKey == "" {
		zlog.Warn("GEMINI_API_KEY not set, assistant chat will fail upstream")
	}
	gemini := assistant.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel)
	intake := assistant.NewIntakeService(gemini, reportRepo, zlog)

	router := api.NewRouter(api.RouterConfig{
		Users:         users,
		Appointments:  appts,
		Reports:       reportRepo,
		Notifications: notifRepo,
		Intake:        intake,
		Sessions:      sessions,
		PgPool:        pgPool,
		Redis:         rdb,
		Log:           zlog,
		Env:           cfg.Env,
		Version:       version,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		zlog.Info("listening", zap.String("addr", srv.Addr))
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("http server error", zap.Error(err))
		}
	case <-rootCtx.Done():
	}

	zlog.Info("shutting down api-server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("graceful shutdown failed", zap.Error(err))
	}
}
