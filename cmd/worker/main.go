package main

import (
	"context"
	"log"
	_ "time/tzdata"

	"gigbook/internal/app"
	"gigbook/internal/config"
	"gigbook/internal/database"
	"gigbook/internal/domain/notification"
	"gigbook/internal/pkg/logger"

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

	db, err := database.Connect(cfg.DatabaseURL, lg)
	if err != nil {
		lg.Fatal("database connection failed", zap.Error(err))
	}

	// Realtime sockets live in the api process, so the worker has no
	// publisher.
	dispatcher, err := app.NewDispatcher(context.Background(), cfg, db, nil, lg)
	if err != nil {
		lg.Fatal("dispatcher setup failed", zap.Error(err))
	}

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisQueueDB,
		},
		asynq.Config{
			Concurrency: cfg.WorkerConcurrency,
			Queues:      notification.QueueWeights,
			Logger:      lg.Named("asynq").Sugar(),
		},
	)

	cleanupCtx, stopCleanup := context.WithCancel(context.Background())
	defer stopCleanup()
	cleanup := notification.NewCleanupService(
		notification.NewInAppRepository(db),
		notification.NewDeviceTokenRepository(db),
		lg,
	)
	cleanupCfg := notification.DefaultCleanupConfig()
	cleanupCfg.NotificationRetentionDays = cfg.NotificationRetentionDays
	cleanupCfg.DeviceTokenInactivityDays = cfg.DeviceTokenInactivityDays
	cleanup.ScheduleCleanup(cleanupCtx, cleanupCfg)

	mux := asynq.NewServeMux()
	mux.HandleFunc(notification.TypeDispatch, notification.HandleDispatchTask(dispatcher, lg))

	lg.Info("worker starting",
		zap.String("redis", cfg.RedisAddr),
		zap.Int("concurrency", cfg.WorkerConcurrency),
	)
	if err := srv.Run(mux); err != nil {
		lg.Fatal("worker stopped", zap.Error(err))
	}
}
