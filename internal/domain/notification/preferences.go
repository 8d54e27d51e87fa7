package notification

import (
	"fmt"
	"time"
)

// ChannelOverrides narrows the global toggles for one category. A channel
// missing from the map is not overridden.
type ChannelOverrides map[Channel]bool

// Validate rejects keys that are not delivery channels.
func (o ChannelOverrides) Validate() error {
	for ch := range o {
		if !isDeliveryChannel(ch) {
			return fmt.Errorf("%w: %q", ErrInvalidChannelOverrides, ch)
		}
	}
	return nil
}

// Preferences holds user notification preferences
type Preferences struct {
	ID     int64  `gorm:"primaryKey;column:id" json:"id"`
	UserID string `gorm:"column:user_id;uniqueIndex" json:"user_id"`

	EmailEnabled    bool `gorm:"column:email_enabled" json:"email_enabled"`
	SMSEnabled      bool `gorm:"column:sms_enabled" json:"sms_enabled"`
	WhatsAppEnabled bool `gorm:"column:whatsapp_enabled" json:"whatsapp_enabled"`
	PushEnabled     bool `gorm:"column:push_enabled" json:"push_enabled"`

	BookingNotifications ChannelOverrides `gorm:"column:booking_notifications;type:jsonb;serializer:json" json:"booking_notifications,omitempty"`
	MessageNotifications ChannelOverrides `gorm:"column:message_notifications;type:jsonb;serializer:json" json:"message_notifications,omitempty"`
	PaymentNotifications ChannelOverrides `gorm:"column:payment_notifications;type:jsonb;serializer:json" json:"payment_notifications,omitempty"`
	JobNotifications     ChannelOverrides `gorm:"column:job_notifications;type:jsonb;serializer:json" json:"job_notifications,omitempty"`

	QuietHoursEnabled bool   `gorm:"column:quiet_hours_enabled" json:"quiet_hours_enabled"`
	QuietHoursStart   string `gorm:"column:quiet_hours_start" json:"quiet_hours_start,omitempty"`
	QuietHoursEnd     string `gorm:"column:quiet_hours_end" json:"quiet_hours_end,omitempty"`

	EmailAddress   string `gorm:"column:email_address" json:"email_address,omitempty"`
	PhoneNumber    string `gorm:"column:phone_number" json:"phone_number,omitempty"`
	WhatsAppNumber string `gorm:"column:whatsapp_number" json:"whatsapp_number,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName specifies table name for GORM
func (Preferences) TableName() string {
	return "notification_preferences"
}

// DefaultPreferences returns the settings used when a user has no
// preferences row: email and push on, sms and whatsapp off, no quiet hours.
func DefaultPreferences(userID string) *Preferences {
	return &Preferences{
		UserID:       userID,
		EmailEnabled: true,
		PushEnabled:  true,
	}
}

// Overrides returns the override map for a category, nil for CategoryNone.
func (p *Preferences) Overrides(cat Category) ChannelOverrides {
	switch cat {
	case CategoryBooking:
		return p.BookingNotifications
	case CategoryMessage:
		return p.MessageNotifications
	case CategoryPayment:
		return p.PaymentNotifications
	case CategoryJob:
		return p.JobNotifications
	}
	return nil
}

// GlobalEnabled reports the global toggle for a delivery channel.
func (p *Preferences) GlobalEnabled(ch Channel) bool {
	switch ch {
	case ChannelEmail:
		return p.EmailEnabled
	case ChannelSMS:
		return p.SMSEnabled
	case ChannelWhatsApp:
		return p.WhatsAppEnabled
	case ChannelPush:
		return p.PushEnabled
	}
	return false
}

// ChannelEnabled is true iff the global toggle is on and the category
// override is absent or true. Overrides can only narrow.
func (p *Preferences) ChannelEnabled(ch Channel, cat Category) bool {
	if !p.GlobalEnabled(ch) {
		return false
	}
	enabled, ok := p.Overrides(cat)[ch]
	return !ok || enabled
}

// EnabledChannels lists the delivery channels to use for a category.
func (p *Preferences) EnabledChannels(cat Category) []Channel {
	out := make([]Channel, 0, len(DeliveryChannels))
	for _, ch := range DeliveryChannels {
		if p.ChannelEnabled(ch, cat) {
			out = append(out, ch)
		}
	}
	return out
}

// QuietHours returns the quiet-hours policy.
func (p *Preferences) QuietHours() QuietHours {
	return QuietHours{
		Enabled: p.QuietHoursEnabled,
		Start:   p.QuietHoursStart,
		End:     p.QuietHoursEnd,
	}
}

// Validate checks fields a client may set.
func (p *Preferences) Validate() error {
	for _, o := range []ChannelOverrides{p.BookingNotifications, p.MessageNotifications, p.PaymentNotifications, p.JobNotifications} {
		if err := o.Validate(); err != nil {
			return err
		}
	}
	if p.QuietHoursEnabled {
		if _, err := parseTimeOfDay(p.QuietHoursStart); err != nil {
			return err
		}
		if _, err := parseTimeOfDay(p.QuietHoursEnd); err != nil {
			return err
		}
	}
	return nil
}

func isDeliveryChannel(ch Channel) bool {
	for _, c := range DeliveryChannels {
		if c == ch {
			return true
		}
	}
	return false
}
