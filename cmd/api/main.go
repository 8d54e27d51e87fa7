package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"gigbook/internal/app"
	"gigbook/internal/config"
	"gigbook/internal/database"
	"gigbook/internal/domain/notification"
	"gigbook/internal/domain/verification"
	jwtsvc "gigbook/internal/pkg/jwt"
	"gigbook/internal/pkg/logger"
	"gigbook/internal/realtime"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	lg, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = lg.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg.DatabaseURL, lg)
	if err != nil {
		lg.Fatal("database connection failed", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		lg.Fatal("migration failed", zap.Error(err))
	}

	hub := realtime.NewHub(cfg.AllowedOrigins(), lg)

	dispatcher, err := app.NewDispatcher(ctx, cfg, db, hub, lg)
	if err != nil {
		lg.Fatal("dispatcher setup failed", zap.Error(err))
	}

	var queue notification.Enqueuer = dispatcher
	if cfg.QueueEnabled {
		client := asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisQueueDB,
		})
		defer client.Close()
		queue = notification.NewAsynqQueue(client, lg)
		lg.Info("notifications are dispatched by the worker", zap.String("redis", cfg.RedisAddr))
	}

	gate := verification.NewGate(
		verification.NewProfileRepository(db),
		verification.NewBankAccountRepository(db),
		verification.NewKYCRepository(db),
		cfg.VerificationFetchTimeout,
		lg,
	)

	if cfg.IsProdLike() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := app.NewRouter(app.RouterDeps{
		Config: cfg,
		DB:     db,
		JWT:    jwtsvc.New(cfg.JWTSecret, 24*time.Hour),
		Queue:  queue,
		Gate:   gate,
		Hub:    hub,
		Logger: lg,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		lg.Info("api listening", zap.String("addr", srv.Addr), zap.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	lg.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error("graceful shutdown failed", zap.Error(err))
	}
}
