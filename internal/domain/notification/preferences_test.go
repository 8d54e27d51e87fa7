package notification

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEveryTypeHasCategoryAndIcon(t *testing.T) {
	for _, typ := range AllTypes {
		_, ok := categoryByType[typ]
		assert.True(t, ok, "type %s has no category", typ)
		assert.NotEqual(t, defaultIcon, IconFor(typ), "type %s has no icon", typ)
		assert.True(t, typ.Valid())
	}
	assert.Len(t, categoryByType, len(AllTypes))
	assert.Equal(t, defaultIcon, IconFor("something_else"))
	assert.Equal(t, "✅", IconFor(TypeBookingConfirmed))
}

// Exhaustive over the four global toggles and every override state
// (absent / true / false) for each channel of one category.
func TestChannelEnabled_Gating(t *testing.T) {
	overrideStates := []*bool{nil, ptr(true), ptr(false)}

	for mask := 0; mask < 16; mask++ {
		for _, ov := range overrideStates {
			for _, target := range DeliveryChannels {
				p := &Preferences{
					EmailEnabled:    mask&1 != 0,
					SMSEnabled:      mask&2 != 0,
					WhatsAppEnabled: mask&4 != 0,
					PushEnabled:     mask&8 != 0,
				}
				if ov != nil {
					p.BookingNotifications = ChannelOverrides{target: *ov}
				}

				for _, ch := range DeliveryChannels {
					want := p.GlobalEnabled(ch)
					if ch == target && ov != nil {
						want = want && *ov
					}
					assert.Equal(t, want, p.ChannelEnabled(ch, CategoryBooking),
						"mask=%04b override=%v target=%s channel=%s", mask, ov, target, ch)
				}
			}
		}
	}
}

func TestChannelEnabled_OverrideSuppressesExactlyOneChannel(t *testing.T) {
	p := &Preferences{EmailEnabled: true, SMSEnabled: true, WhatsAppEnabled: true, PushEnabled: true}
	require.Equal(t, DeliveryChannels, p.EnabledChannels(CategoryPayment))

	for _, ch := range DeliveryChannels {
		p.PaymentNotifications = ChannelOverrides{ch: false}
		got := p.EnabledChannels(CategoryPayment)

		assert.Len(t, got, len(DeliveryChannels)-1)
		assert.NotContains(t, got, ch)
		// other categories are untouched
		assert.Equal(t, DeliveryChannels, p.EnabledChannels(CategoryBooking))
	}
}

func TestChannelEnabled_OverrideCannotWiden(t *testing.T) {
	p := &Preferences{
		EmailEnabled:         false,
		MessageNotifications: ChannelOverrides{ChannelEmail: true},
	}
	assert.False(t, p.ChannelEnabled(ChannelEmail, CategoryMessage))
}

func TestChannelEnabled_UncategorisedUsesGlobals(t *testing.T) {
	p := DefaultPreferences("u1")
	p.BookingNotifications = ChannelOverrides{ChannelEmail: false}

	assert.Equal(t, CategoryNone, CategoryOf(TypeRatingReceived))
	assert.Equal(t, []Channel{ChannelEmail, ChannelPush}, p.EnabledChannels(CategoryOf(TypeRatingReceived)))
}

func TestDefaultPreferences(t *testing.T) {
	p := DefaultPreferences("u1")
	assert.Equal(t, []Channel{ChannelEmail, ChannelPush}, p.EnabledChannels(CategoryBooking))
	assert.False(t, p.QuietHoursEnabled)
}

func TestPreferences_Validate(t *testing.T) {
	p := DefaultPreferences("u1")
	assert.NoError(t, p.Validate())

	p.JobNotifications = ChannelOverrides{ChannelInApp: false}
	assert.ErrorIs(t, p.Validate(), ErrInvalidChannelOverrides)

	p.JobNotifications = nil
	p.QuietHoursEnabled = true
	p.QuietHoursStart = "22:00"
	p.QuietHoursEnd = "8am"
	assert.ErrorIs(t, p.Validate(), ErrInvalidTimeOfDay)

	p.QuietHoursEnd = "08:00"
	assert.NoError(t, p.Validate())
}

func TestEvent_Validate(t *testing.T) {
	ok := Event{UserID: "u1", Type: TypeMessageReceived, Title: "Hi"}
	assert.NoError(t, ok.Validate())

	cases := map[string]Event{
		"no user":      {Type: TypeMessageReceived, Title: "Hi"},
		"unknown type": {UserID: "u1", Type: "gig_exploded", Title: "Hi"},
		"no title":     {UserID: "u1", Type: TypeMessageReceived, Title: "  "},
		"bad priority": {UserID: "u1", Type: TypeMessageReceived, Title: "Hi", Priority: "asap"},
	}
	for name, ev := range cases {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, ev.Validate(), ErrInvalidEvent)
		})
	}
}

func ptr[T any](v T) *T { return &v }
