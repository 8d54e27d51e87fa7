package notification

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// CleanupConfig holds configuration for cleanup tasks
type CleanupConfig struct {
	NotificationRetentionDays int           // keep in-app notifications for N days
	DeviceTokenInactivityDays int           // remove tokens unused for N days
	CleanupInterval           time.Duration // how often ScheduleCleanup runs
	ReadOnly                  bool          // only delete notifications already read
}

// DefaultCleanupConfig returns default cleanup configuration
func DefaultCleanupConfig() CleanupConfig {
	return CleanupConfig{
		NotificationRetentionDays: 90,
		DeviceTokenInactivityDays: 90,
		CleanupInterval:           24 * time.Hour,
	}
}

// CleanupReport summarises one cleanup run.
type CleanupReport struct {
	NotificationsDeleted int64
	DeviceTokensDeleted  int64
	Duration             time.Duration
}

type notificationPruner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time, readOnly bool) (int64, error)
}

type deviceTokenPruner interface {
	DeleteInactive(ctx context.Context, before time.Time) (int64, error)
}

// CleanupService handles retention of in-app notifications and device tokens
type CleanupService struct {
	notifications notificationPruner
	tokens        deviceTokenPruner
	log           *zap.Logger
	now           func() time.Time
}

// NewCleanupService creates cleanup service
func NewCleanupService(notifications notificationPruner, tokens deviceTokenPruner, log *zap.Logger) *CleanupService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CleanupService{
		notifications: notifications,
		tokens:        tokens,
		log:           log.Named("notification_cleanup"),
		now:           time.Now,
	}
}

// Run executes every cleanup task once. A failing task does not stop the
// others; the first error is returned.
func (c *CleanupService) Run(ctx context.Context, cfg CleanupConfig) (CleanupReport, error) {
	start := c.now()
	var (
		report   CleanupReport
		firstErr error
	)

	if c.notifications != nil && cfg.NotificationRetentionDays > 0 {
		cutoff := start.AddDate(0, 0, -cfg.NotificationRetentionDays)
		n, err := c.notifications.DeleteOlderThan(ctx, cutoff, cfg.ReadOnly)
		if err != nil {
			c.log.Error("notification cleanup failed", zap.Error(err))
			firstErr = err
		}
		report.NotificationsDeleted = n
	}

	if c.tokens != nil && cfg.DeviceTokenInactivityDays > 0 {
		cutoff := start.AddDate(0, 0, -cfg.DeviceTokenInactivityDays)
		n, err := c.tokens.DeleteInactive(ctx, cutoff)
		if err != nil {
			c.log.Error("device token cleanup failed", zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
		report.DeviceTokensDeleted = n
	}

	report.Duration = time.Since(start)
	c.log.Info("cleanup completed",
		zap.Int64("notifications_deleted", report.NotificationsDeleted),
		zap.Int64("device_tokens_deleted", report.DeviceTokensDeleted),
		zap.Duration("duration", report.Duration),
	)
	return report, firstErr
}

// ScheduleCleanup runs cleanup every cfg.CleanupInterval until ctx is done.
func (c *CleanupService) ScheduleCleanup(ctx context.Context, cfg CleanupConfig) {
	if cfg.CleanupInterval <= 0 {
		c.log.Info("automatic cleanup is disabled")
		return
	}

	go func() {
		ticker := time.NewTicker(cfg.CleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				_, _ = c.Run(ctx, cfg)
			case <-ctx.Done():
				c.log.Info("scheduled cleanup stopped")
				return
			}
		}
	}()

	c.log.Info("scheduled cleanup started", zap.Duration("interval", cfg.CleanupInterval))
}
