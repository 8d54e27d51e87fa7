package app

import (
	"context"

	"gigbook/internal/config"
	"gigbook/internal/delivery"
	"gigbook/internal/domain/notification"
	"gigbook/internal/domain/verification"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Senders are the channel providers. Unconfigured providers are replaced
// by the console sender outside production.
type Senders struct {
	Email notification.EmailSender
	Text  notification.TextSender
	Push  notification.PushSender
}

// NewSenders builds the providers from configuration.
func NewSenders(ctx context.Context, cfg *config.Config, tokens delivery.TokenDeactivator, log *zap.Logger) Senders {
	var s Senders
	console := delivery.NewConsole(log)

	if cfg.ResendAPIKey != "" {
		s.Email = delivery.NewResendMailer(cfg.ResendAPIKey, cfg.EmailFrom)
	} else if !cfg.IsProdLike() {
		log.Warn("RESEND_API_KEY not set, emails are written to the log")
		s.Email = console
	}

	if cfg.TwilioAccountSID != "" && cfg.TwilioAuthToken != "" {
		s.Text = delivery.NewTwilioTexter(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioSMSFrom, cfg.TwilioWhatsAppFrom)
	} else if !cfg.IsProdLike() {
		log.Warn("Twilio credentials not set, text messages are written to the log")
		s.Text = console
	}

	if cfg.FirebaseCredentialsFile != "" {
		pusher, err := delivery.NewFCMPusher(ctx, cfg.FirebaseCredentialsFile, tokens, log)
		if err != nil {
			log.Error("push disabled", zap.Error(err))
		} else {
			s.Push = pusher
		}
	} else if !cfg.IsProdLike() {
		log.Warn("FIREBASE_CREDENTIALS_FILE not set, pushes are written to the log")
		s.Push = console
	}

	return s
}

// NewDispatcher wires the dispatcher to the database and providers.
// publisher may be nil.
func NewDispatcher(ctx context.Context, cfg *config.Config, db *gorm.DB, publisher notification.Publisher, log *zap.Logger) (*notification.Dispatcher, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	tokens := notification.NewDeviceTokenRepository(db)
	senders := NewSenders(ctx, cfg, tokens, log)

	deps := notification.Deps{
		Preferences:   notification.NewPreferencesRepository(db),
		Subscriptions: tokens,
		Contacts:      verification.NewProfileRepository(db),
		Logs:          notification.NewLogRepository(db),
		InApp:         notification.NewInAppRepository(db),
		Email:         senders.Email,
		Text:          senders.Text,
		Push:          senders.Push,
		Logger:        log,
	}
	if publisher != nil {
		deps.Publisher = publisher
	}

	return notification.NewDispatcher(deps, notification.Options{
		Location:       loc,
		ChannelTimeout: cfg.ChannelTimeout,
		AppBaseURL:     cfg.AppBaseURL,
	}), nil
}
