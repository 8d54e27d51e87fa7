package delivery

import (
	"context"
	"encoding/json"
	"fmt"

	"gigbook/internal/domain/notification"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

type fcmClient interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// TokenDeactivator disables tokens the push service no longer accepts.
type TokenDeactivator interface {
	DeactivateToken(ctx context.Context, token string) error
}

// FCMPusher delivers pushes through Firebase Cloud Messaging.
type FCMPusher struct {
	client fcmClient
	tokens TokenDeactivator
	log    *zap.Logger
}

// NewFCMPusher initialises the Firebase app from a service account file.
func NewFCMPusher(ctx context.Context, credentialsFile string, tokens TokenDeactivator, log *zap.Logger) (*FCMPusher, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("firebase: init app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase: messaging client: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &FCMPusher{client: client, tokens: tokens, log: log.Named("fcm")}, nil
}

func (p *FCMPusher) Provider() string { return "fcm" }

func (p *FCMPusher) SendPush(ctx context.Context, sub notification.DeviceToken, payload notification.PushPayload) error {
	data := stringData(payload.Data)
	link := data["url"]

	msg := &messaging.Message{
		Token: sub.Token,
		Notification: &messaging.Notification{
			Title: payload.Title,
			Body:  payload.Body,
		},
		Data: data,
		Webpush: &messaging.WebpushConfig{
			Notification: &messaging.WebpushNotification{
				Title: payload.Title,
				Body:  payload.Body,
				Icon:  payload.Icon,
				Badge: payload.Badge,
			},
			FCMOptions: &messaging.WebpushFCMOptions{Link: link},
		},
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "default",
				Sound:     "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Sound: "default"},
			},
		},
	}

	if _, err := p.client.Send(ctx, msg); err != nil {
		if messaging.IsUnregistered(err) && p.tokens != nil {
			if derr := p.tokens.DeactivateToken(context.WithoutCancel(ctx), sub.Token); derr != nil {
				p.log.Warn("failed to deactivate unregistered token", zap.Int64("device_id", sub.ID), zap.Error(derr))
			}
		}
		return fmt.Errorf("fcm: %w", err)
	}
	return nil
}

// stringData flattens payload data; FCM only carries string values.
func stringData(in map[string]any) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		switch t := v.(type) {
		case string:
			out[k] = t
		case nil:
		default:
			if b, err := json.Marshal(t); err == nil {
				out[k] = string(b)
			} else {
				out[k] = fmt.Sprint(t)
			}
		}
	}
	return out
}
