package delivery

import (
	"context"

	"gigbook/internal/domain/notification"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Console is a development sender for every channel. It logs what would
// have been sent and reports success.
type Console struct {
	log *zap.Logger
}

func NewConsole(log *zap.Logger) *Console {
	if log == nil {
		log = zap.NewNop()
	}
	return &Console{log: log.Named("dev_delivery")}
}

func (c *Console) Provider() string { return "console" }

func (c *Console) SendEmail(_ context.Context, to, subject, htmlBody string) (string, error) {
	id := uuid.NewString()
	c.log.Info("[DEV-EMAIL]", zap.String("to", to), zap.String("subject", subject), zap.Int("html_bytes", len(htmlBody)), zap.String("id", id))
	return id, nil
}

func (c *Console) SendText(_ context.Context, to, body string, ch notification.Channel) (string, error) {
	id := uuid.NewString()
	c.log.Info("[DEV-TEXT]", zap.String("channel", string(ch)), zap.String("to", to), zap.String("body", body), zap.String("id", id))
	return id, nil
}

func (c *Console) SendPush(_ context.Context, sub notification.DeviceToken, payload notification.PushPayload) error {
	c.log.Info("[DEV-PUSH]", zap.Int64("device_id", sub.ID), zap.String("platform", sub.Platform), zap.String("title", payload.Title), zap.Any("data", payload.Data))
	return nil
}
