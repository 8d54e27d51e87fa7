package notification

import "context"

// PreferencesReader loads a user's preferences. It returns (nil, nil) when
// the user has no preferences row.
type PreferencesReader interface {
	GetPreferences(ctx context.Context, userID string) (*Preferences, error)
}

// SubscriptionReader lists a user's active push subscriptions.
type SubscriptionReader interface {
	ListActive(ctx context.Context, userID string) ([]DeviceToken, error)
}

// ContactReader resolves contact details when preferences do not carry them.
type ContactReader interface {
	GetContact(ctx context.Context, userID string) (Contact, error)
}

// Contact holds fallback addresses for a user.
type Contact struct {
	Email string
	Phone string
}

// LogWriter appends channel attempt records.
type LogWriter interface {
	Append(ctx context.Context, entry *LogEntry) error
}

// InAppWriter stores in-app notifications.
type InAppWriter interface {
	Create(ctx context.Context, n *InAppNotification) error
}

// Publisher pushes a freshly created in-app notification to connected clients.
type Publisher interface {
	PublishNotification(userID string, n *InAppNotification)
}

// EmailSender delivers one HTML email and returns the provider message id.
type EmailSender interface {
	Provider() string
	SendEmail(ctx context.Context, to, subject, htmlBody string) (string, error)
}

// TextSender delivers a text message over sms or whatsapp.
type TextSender interface {
	Provider() string
	SendText(ctx context.Context, to, body string, ch Channel) (string, error)
}

// PushSender delivers one push payload to one subscription.
type PushSender interface {
	Provider() string
	SendPush(ctx context.Context, sub DeviceToken, payload PushPayload) error
}

// Submitter accepts events for delivery without blocking the caller.
type Submitter interface {
	Submit(ctx context.Context, ev Event)
}
