package main

import (
	"context"
	"flag"
	"log"

	"gigbook/internal/config"
	"gigbook/internal/database"
	"gigbook/internal/domain/notification"
	"gigbook/internal/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	readOnly := flag.Bool("read-only", false, "only delete notifications that were already read")
	flag.Parse()

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
		lg.Fatal("db connect failed", zap.Error(err))
	}

	svc := notification.NewCleanupService(
		notification.NewInAppRepository(db),
		notification.NewDeviceTokenRepository(db),
		lg,
	)

	report, err := svc.Run(context.Background(), notification.CleanupConfig{
		NotificationRetentionDays: cfg.NotificationRetentionDays,
		DeviceTokenInactivityDays: cfg.DeviceTokenInactivityDays,
		ReadOnly:                  *readOnly,
	})
	if err != nil {
		lg.Fatal("cleanup failed", zap.Error(err))
	}

	lg.Info("notification cleanup completed",
		zap.Int64("notifications", report.NotificationsDeleted),
		zap.Int64("device_tokens", report.DeviceTokensDeleted),
	)
}
