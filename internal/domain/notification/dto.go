package notification

import (
	"time"
)

// NotificationResponse for API responses
type NotificationResponse struct {
	ID                int64          `json:"id"`
	Type              Type           `json:"type"`
	Title             string         `json:"title"`
	Message           string         `json:"message"`
	Icon              string         `json:"icon"`
	Priority          Priority       `json:"priority"`
	ActionURL         string         `json:"action_url,omitempty"`
	RelatedEntityType string         `json:"related_entity_type,omitempty"`
	RelatedEntityID   string         `json:"related_entity_id,omitempty"`
	Data              map[string]any `json:"data,omitempty"`
	IsRead            bool           `json:"is_read"`
	ReadAt            *string        `json:"read_at,omitempty"`
	CreatedAt         string         `json:"created_at"`
}

// NotificationResponseFromEntity converts entity to response DTO
func NotificationResponseFromEntity(n *InAppNotification) *NotificationResponse {
	resp := &NotificationResponse{
		ID:                n.ID,
		Type:              n.NotificationType,
		Title:             n.Title,
		Message:           n.Message,
		Icon:              n.Icon,
		Priority:          n.Priority,
		ActionURL:         n.ActionURL,
		RelatedEntityType: n.RelatedEntityType,
		RelatedEntityID:   n.RelatedEntityID,
		Data:              n.Data,
		IsRead:            n.IsRead,
		CreatedAt:         n.CreatedAt.Format(time.RFC3339),
	}

	if n.ReadAt != nil {
		readAt := n.ReadAt.Format(time.RFC3339)
		resp.ReadAt = &readAt
	}

	return resp
}

// NotificationListResponse for list endpoint
type NotificationListResponse struct {
	Notifications []*NotificationResponse `json:"notifications"`
	UnreadCount   int64                   `json:"unread_count"`
	Total         int64                   `json:"total"`
}

// UnreadCountResponse for unread count endpoint
type UnreadCountResponse struct {
	UnreadCount int64 `json:"unread_count"`
}

// PreferencesResponse for notification preferences endpoint
type PreferencesResponse struct {
	UserID string `json:"user_id"`

	EmailEnabled    bool `json:"email_enabled"`
	SMSEnabled      bool `json:"sms_enabled"`
	WhatsAppEnabled bool `json:"whatsapp_enabled"`
	PushEnabled     bool `json:"push_enabled"`

	BookingNotifications ChannelOverrides `json:"booking_notifications"`
	MessageNotifications ChannelOverrides `json:"message_notifications"`
	PaymentNotifications ChannelOverrides `json:"payment_notifications"`
	JobNotifications     ChannelOverrides `json:"job_notifications"`

	QuietHoursEnabled bool   `json:"quiet_hours_enabled"`
	QuietHoursStart   string `json:"quiet_hours_start,omitempty"`
	QuietHoursEnd     string `json:"quiet_hours_end,omitempty"`

	EmailAddress   string `json:"email_address,omitempty"`
	PhoneNumber    string `json:"phone_number,omitempty"`
	WhatsAppNumber string `json:"whatsapp_number,omitempty"`
}

func PreferencesResponseFromEntity(p *Preferences) *PreferencesResponse {
	return &PreferencesResponse{
		UserID:               p.UserID,
		EmailEnabled:         p.EmailEnabled,
		SMSEnabled:           p.SMSEnabled,
		WhatsAppEnabled:      p.WhatsAppEnabled,
		PushEnabled:          p.PushEnabled,
		BookingNotifications: orEmpty(p.BookingNotifications),
		MessageNotifications: orEmpty(p.MessageNotifications),
		PaymentNotifications: orEmpty(p.PaymentNotifications),
		JobNotifications:     orEmpty(p.JobNotifications),
		QuietHoursEnabled:    p.QuietHoursEnabled,
		QuietHoursStart:      p.QuietHoursStart,
		QuietHoursEnd:        p.QuietHoursEnd,
		EmailAddress:         p.EmailAddress,
		PhoneNumber:          p.PhoneNumber,
		WhatsAppNumber:       p.WhatsAppNumber,
	}
}

func orEmpty(o ChannelOverrides) ChannelOverrides {
	if o == nil {
		return ChannelOverrides{}
	}
	return o
}

// UpdatePreferencesRequest for updating notification preferences. Absent
// fields are left unchanged; an override map, when present, replaces the
// stored one.
type UpdatePreferencesRequest struct {
	EmailEnabled    *bool `json:"email_enabled,omitempty"`
	SMSEnabled      *bool `json:"sms_enabled,omitempty"`
	WhatsAppEnabled *bool `json:"whatsapp_enabled,omitempty"`
	PushEnabled     *bool `json:"push_enabled,omitempty"`

	BookingNotifications ChannelOverrides `json:"booking_notifications,omitempty"`
	MessageNotifications ChannelOverrides `json:"message_notifications,omitempty"`
	PaymentNotifications ChannelOverrides `json:"payment_notifications,omitempty"`
	JobNotifications     ChannelOverrides `json:"job_notifications,omitempty"`

	QuietHoursEnabled *bool   `json:"quiet_hours_enabled,omitempty"`
	QuietHoursStart   *string `json:"quiet_hours_start,omitempty" validate:"omitempty,max=8"`
	QuietHoursEnd     *string `json:"quiet_hours_end,omitempty" validate:"omitempty,max=8"`

	EmailAddress   *string `json:"email_address,omitempty" validate:"omitempty,email"`
	PhoneNumber    *string `json:"phone_number,omitempty" validate:"omitempty,e164"`
	WhatsAppNumber *string `json:"whatsapp_number,omitempty" validate:"omitempty,e164"`
}

func (r UpdatePreferencesRequest) apply(p *Preferences) {
	setBool(&p.EmailEnabled, r.EmailEnabled)
	setBool(&p.SMSEnabled, r.SMSEnabled)
	setBool(&p.WhatsAppEnabled, r.WhatsAppEnabled)
	setBool(&p.PushEnabled, r.PushEnabled)
	setBool(&p.QuietHoursEnabled, r.QuietHoursEnabled)

	if r.BookingNotifications != nil {
		p.BookingNotifications = r.BookingNotifications
	}
	if r.MessageNotifications != nil {
		p.MessageNotifications = r.MessageNotifications
	}
	if r.PaymentNotifications != nil {
		p.PaymentNotifications = r.PaymentNotifications
	}
	if r.JobNotifications != nil {
		p.JobNotifications = r.JobNotifications
	}

	setString(&p.QuietHoursStart, r.QuietHoursStart)
	setString(&p.QuietHoursEnd, r.QuietHoursEnd)
	setString(&p.EmailAddress, r.EmailAddress)
	setString(&p.PhoneNumber, r.PhoneNumber)
	setString(&p.WhatsAppNumber, r.WhatsAppNumber)
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// DeviceTokenResponse for device tokens endpoint
type DeviceTokenResponse struct {
	ID         int64  `json:"id"`
	Platform   string `json:"platform"`
	DeviceName string `json:"device_name,omitempty"`
	IsActive   bool   `json:"is_active"`
	CreatedAt  string `json:"created_at"`
	LastUsedAt string `json:"last_used_at,omitempty"`
}

func DeviceTokenResponseFromEntity(dt *DeviceToken) *DeviceTokenResponse {
	resp := &DeviceTokenResponse{
		ID:         dt.ID,
		Platform:   dt.Platform,
		DeviceName: dt.DeviceName,
		IsActive:   dt.IsActive,
		CreatedAt:  dt.CreatedAt.Format(time.RFC3339),
	}
	if !dt.LastUsedAt.IsZero() {
		resp.LastUsedAt = dt.LastUsedAt.Format(time.RFC3339)
	}
	return resp
}

// RegisterDeviceTokenRequest for registering a new device token
type RegisterDeviceTokenRequest struct {
	Token      string `json:"token" validate:"required,max=4096"`
	Platform   string `json:"platform" validate:"required,oneof=web ios android"`
	DeviceName string `json:"device_name,omitempty" validate:"max=255"`
}

// SendRequest is the body of the internal send endpoint.
type SendRequest struct {
	UserID            string         `json:"user_id" validate:"required"`
	Type              Type           `json:"type" validate:"required"`
	Title             string         `json:"title" validate:"required,max=255"`
	Body              string         `json:"body"`
	Data              map[string]any `json:"data,omitempty"`
	Priority          Priority       `json:"priority,omitempty" validate:"omitempty,oneof=urgent high normal low"`
	RelatedEntityType string         `json:"related_entity_type,omitempty"`
	RelatedEntityID   string         `json:"related_entity_id,omitempty"`
	ActionURL         string         `json:"action_url,omitempty"`
}

func (r SendRequest) Event() Event {
	return Event{
		UserID:            r.UserID,
		Type:              r.Type,
		Title:             r.Title,
		Body:              r.Body,
		Data:              r.Data,
		Priority:          r.Priority.OrDefault(),
		RelatedEntityType: r.RelatedEntityType,
		RelatedEntityID:   r.RelatedEntityID,
		ActionURL:         r.ActionURL,
	}
}
