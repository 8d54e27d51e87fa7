package notification

// Type represents notification type
type Type string

const (
	// Bookings
	TypeBookingCreated   Type = "booking_created"
	TypeBookingConfirmed Type = "booking_confirmed"
	TypeBookingCancelled Type = "booking_cancelled"

	// Payments
	TypePaymentReceived Type = "payment_received"
	TypePaymentReleased Type = "payment_released"

	// Communication
	TypeMessageReceived Type = "message_received"

	// Jobs & auditions
	TypeJobApplicationReceived    Type = "job_application_received"
	TypeJobApplicationShortlisted Type = "job_application_shortlisted"
	TypeAuditionScheduled         Type = "audition_scheduled"

	// Misc
	TypeRatingReceived Type = "rating_received"
	TypeEventReminder  Type = "event_reminder"

	// Proposals
	TypeProposalReceived Type = "proposal_received"
	TypeProposalAccepted Type = "proposal_accepted"
)

// AllTypes lists every notification type in declaration order.
var AllTypes = []Type{
	TypeBookingCreated,
	TypeBookingConfirmed,
	TypeBookingCancelled,
	TypePaymentReceived,
	TypePaymentReleased,
	TypeMessageReceived,
	TypeJobApplicationReceived,
	TypeJobApplicationShortlisted,
	TypeAuditionScheduled,
	TypeRatingReceived,
	TypeEventReminder,
	TypeProposalReceived,
	TypeProposalAccepted,
}

// Valid reports whether t is one of the known types.
func (t Type) Valid() bool {
	_, ok := categoryByType[t]
	return ok
}

// Priority of a notification.
type Priority string

const (
	PriorityUrgent Priority = "urgent"
	PriorityHigh   Priority = "high"
	PriorityNormal Priority = "normal"
	PriorityLow    Priority = "low"
)

// Valid reports whether p is a known priority. The empty value is valid and
// means normal.
func (p Priority) Valid() bool {
	switch p {
	case "", PriorityUrgent, PriorityHigh, PriorityNormal, PriorityLow:
		return true
	}
	return false
}

// OrDefault returns p, or PriorityNormal when p is empty or unknown.
func (p Priority) OrDefault() Priority {
	if p == "" || !p.Valid() {
		return PriorityNormal
	}
	return p
}

// Channel is a delivery channel.
type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelSMS      Channel = "sms"
	ChannelWhatsApp Channel = "whatsapp"
	ChannelPush     Channel = "push"
	ChannelInApp    Channel = "in_app"
)

// DeliveryChannels are the opt-in channels, in evaluation order. In-app is
// not among them: it is created for every non-suppressed send.
var DeliveryChannels = []Channel{ChannelEmail, ChannelSMS, ChannelWhatsApp, ChannelPush}

// Category groups types for per-category channel overrides.
type Category string

const (
	CategoryBooking Category = "booking"
	CategoryMessage Category = "message"
	CategoryPayment Category = "payment"
	CategoryJob     Category = "job"
	CategoryNone    Category = ""
)

var categoryByType = map[Type]Category{
	TypeBookingCreated:            CategoryBooking,
	TypeBookingConfirmed:          CategoryBooking,
	TypeBookingCancelled:          CategoryBooking,
	TypeProposalReceived:          CategoryBooking,
	TypeProposalAccepted:          CategoryBooking,
	TypeMessageReceived:           CategoryMessage,
	TypePaymentReceived:           CategoryPayment,
	TypePaymentReleased:           CategoryPayment,
	TypeJobApplicationReceived:    CategoryJob,
	TypeJobApplicationShortlisted: CategoryJob,
	TypeAuditionScheduled:         CategoryJob,
	TypeRatingReceived:            CategoryNone,
	TypeEventReminder:             CategoryNone,
}

// CategoryOf maps a type to its preference category. Unknown types get
// CategoryNone, i.e. only the global toggles apply.
func CategoryOf(t Type) Category {
	return categoryByType[t]
}

const defaultIcon = "🔔"

var iconByType = map[Type]string{
	TypeBookingCreated:            "📅",
	TypeBookingConfirmed:          "✅",
	TypeBookingCancelled:          "❌",
	TypePaymentReceived:           "💰",
	TypePaymentReleased:           "💸",
	TypeMessageReceived:           "💬",
	TypeJobApplicationReceived:    "📝",
	TypeJobApplicationShortlisted: "⭐",
	TypeAuditionScheduled:         "🎤",
	TypeRatingReceived:            "⭐",
	TypeEventReminder:             "⏰",
	TypeProposalReceived:          "📨",
	TypeProposalAccepted:          "🤝",
}

// IconFor returns the in-app icon for t.
func IconFor(t Type) string {
	if icon, ok := iconByType[t]; ok {
		return icon
	}
	return defaultIcon
}
