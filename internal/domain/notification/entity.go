package notification

import (
	"fmt"
	"strings"
	"time"
)

// Event is a request to notify one user. It is built by the caller when a
// domain event happens and is never persisted itself.
type Event struct {
	UserID            string         `json:"user_id"`
	Type              Type           `json:"type"`
	Title             string         `json:"title"`
	Body              string         `json:"body"`
	Data              map[string]any `json:"data,omitempty"`
	Priority          Priority       `json:"priority,omitempty"`
	RelatedEntityType string         `json:"related_entity_type,omitempty"`
	RelatedEntityID   string         `json:"related_entity_id,omitempty"`
	ActionURL         string         `json:"action_url,omitempty"`
}

// Validate checks the fields a caller must provide.
func (e Event) Validate() error {
	if strings.TrimSpace(e.UserID) == "" {
		return fmt.Errorf("%w: user_id is required", ErrInvalidEvent)
	}
	if !e.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidEvent, e.Type)
	}
	if strings.TrimSpace(e.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidEvent)
	}
	if !e.Priority.Valid() {
		return fmt.Errorf("%w: unknown priority %q", ErrInvalidEvent, e.Priority)
	}
	return nil
}

// LogStatus is the outcome of one channel attempt.
type LogStatus string

const (
	LogStatusSent   LogStatus = "sent"
	LogStatusFailed LogStatus = "failed"
)

// LogEntry is the immutable record of one delivery attempt on one channel.
type LogEntry struct {
	ID                int64          `gorm:"primaryKey;column:id" json:"id"`
	UserID            string         `gorm:"column:user_id;index:idx_notification_logs_user" json:"user_id"`
	Type              Type           `gorm:"column:type" json:"type"`
	Channel           Channel        `gorm:"column:channel" json:"channel"`
	Priority          Priority       `gorm:"column:priority" json:"priority"`
	Title             string         `gorm:"column:title" json:"title"`
	Body              string         `gorm:"column:body" json:"body"`
	Data              map[string]any `gorm:"column:data;type:jsonb;serializer:json" json:"data,omitempty"`
	Status            LogStatus      `gorm:"column:status" json:"status"`
	SentAt            *time.Time     `gorm:"column:sent_at" json:"sent_at,omitempty"`
	FailedAt          *time.Time     `gorm:"column:failed_at" json:"failed_at,omitempty"`
	ErrorMessage      *string        `gorm:"column:error_message" json:"error_message,omitempty"`
	Provider          string         `gorm:"column:provider" json:"provider,omitempty"`
	ProviderMessageID string         `gorm:"column:provider_message_id" json:"provider_message_id,omitempty"`
	RelatedEntityType string         `gorm:"column:related_entity_type" json:"related_entity_type,omitempty"`
	RelatedEntityID   string         `gorm:"column:related_entity_id" json:"related_entity_id,omitempty"`
	CreatedAt         time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// TableName specifies table name for GORM
func (LogEntry) TableName() string {
	return "notification_logs"
}

// InAppNotification is the in-app counterpart of an event. It is created for
// every send that is not suppressed by quiet hours, regardless of channel
// preferences.
type InAppNotification struct {
	ID                int64          `gorm:"primaryKey;column:id" json:"id"`
	UserID            string         `gorm:"column:user_id;index:idx_notifications_user_unread" json:"user_id"`
	Title             string         `gorm:"column:title" json:"title"`
	Message           string         `gorm:"column:message" json:"message"`
	NotificationType  Type           `gorm:"column:notification_type" json:"notification_type"`
	ActionURL         string         `gorm:"column:action_url" json:"action_url,omitempty"`
	RelatedEntityType string         `gorm:"column:related_entity_type" json:"related_entity_type,omitempty"`
	RelatedEntityID   string         `gorm:"column:related_entity_id" json:"related_entity_id,omitempty"`
	Priority          Priority       `gorm:"column:priority" json:"priority"`
	Icon              string         `gorm:"column:icon" json:"icon"`
	Data              map[string]any `gorm:"column:data;type:jsonb;serializer:json" json:"data,omitempty"`
	IsRead            bool           `gorm:"column:is_read;index:idx_notifications_user_unread" json:"is_read"`
	ReadAt            *time.Time     `gorm:"column:read_at" json:"read_at,omitempty"`
	CreatedAt         time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// TableName specifies table name for GORM
func (InAppNotification) TableName() string {
	return "notifications"
}

// MarkAsRead marks notification as read with timestamp
func (n *InAppNotification) MarkAsRead(now time.Time) {
	n.IsRead = true
	n.ReadAt = &now
}

// newInApp builds the in-app row for an event.
func newInApp(ev Event) *InAppNotification {
	return &InAppNotification{
		UserID:            ev.UserID,
		Title:             ev.Title,
		Message:           ev.Body,
		NotificationType:  ev.Type,
		ActionURL:         ev.ActionURL,
		RelatedEntityType: ev.RelatedEntityType,
		RelatedEntityID:   ev.RelatedEntityID,
		Priority:          ev.Priority.OrDefault(),
		Icon:              IconFor(ev.Type),
		Data:              ev.Data,
	}
}

// DeviceToken is a push subscription registered by one of the user's devices.
type DeviceToken struct {
	ID         int64     `gorm:"primaryKey;column:id" json:"id"`
	UserID     string    `gorm:"column:user_id;index:idx_device_tokens_user" json:"user_id"`
	Token      string    `gorm:"column:token;uniqueIndex" json:"token"`
	Platform   string    `gorm:"column:platform" json:"platform"` // web, android, ios
	DeviceName string    `gorm:"column:device_name" json:"device_name,omitempty"`
	IsActive   bool      `gorm:"column:is_active" json:"is_active"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	LastUsedAt time.Time `gorm:"column:last_used_at" json:"last_used_at"`
}

// TableName specifies table name for GORM
func (DeviceToken) TableName() string {
	return "device_tokens"
}
