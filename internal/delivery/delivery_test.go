package delivery

import (
	"context"
	"errors"
	"testing"

	"gigbook/internal/domain/notification"

	"firebase.google.com/go/v4/messaging"
	"github.com/resend/resend-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

type fakeEmails struct {
	got *resend.SendEmailRequest
	err error
}

func (f *fakeEmails) SendWithContext(_ context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error) {
	f.got = params
	if f.err != nil {
		return nil, f.err
	}
	return &resend.SendEmailResponse{Id: "re_123"}, nil
}

func TestResendMailer_SendEmail(t *testing.T) {
	fake := &fakeEmails{}
	m := &ResendMailer{emails: fake, from: "Gigbook <noreply@gigbook.io>"}

	id, err := m.SendEmail(context.Background(), "ana@example.com", "Hello", "<p>hi</p>")
	require.NoError(t, err)
	assert.Equal(t, "re_123", id)
	assert.Equal(t, []string{"ana@example.com"}, fake.got.To)
	assert.Equal(t, "Gigbook <noreply@gigbook.io>", fake.got.From)
	assert.Equal(t, "<p>hi</p>", fake.got.Html)

	fake.err = errors.New("domain not verified")
	_, err = m.SendEmail(context.Background(), "ana@example.com", "Hello", "<p>hi</p>")
	assert.ErrorContains(t, err, "domain not verified")
}

type fakeTwilio struct {
	params *twilioApi.CreateMessageParams
}

func (f *fakeTwilio) CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error) {
	f.params = params
	sid := "SM123"
	return &twilioApi.ApiV2010Message{Sid: &sid}, nil
}

func TestTwilioTexter_WhatsAppPrefixesAddresses(t *testing.T) {
	fake := &fakeTwilio{}
	tx := &TwilioTexter{api: fake, smsFrom: "+15550000000", whatsAppFrom: "+15551111111"}

	id, err := tx.SendText(context.Background(), "+15552222222", "hi", notification.ChannelWhatsApp)
	require.NoError(t, err)
	assert.Equal(t, "SM123", id)
	assert.Equal(t, "whatsapp:+15552222222", *fake.params.To)
	assert.Equal(t, "whatsapp:+15551111111", *fake.params.From)

	_, err = tx.SendText(context.Background(), "+15552222222", "hi", notification.ChannelSMS)
	require.NoError(t, err)
	assert.Equal(t, "+15552222222", *fake.params.To)
	assert.Equal(t, "+15550000000", *fake.params.From)
}

func TestTwilioTexter_MissingSender(t *testing.T) {
	tx := &TwilioTexter{api: &fakeTwilio{}, smsFrom: "+15550000000"}
	_, err := tx.SendText(context.Background(), "+15552222222", "hi", notification.ChannelWhatsApp)
	assert.Error(t, err)
}

func TestTwilioTexter_CancelledContext(t *testing.T) {
	fake := &fakeTwilio{}
	tx := &TwilioTexter{api: fake, smsFrom: "+15550000000"}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := tx.SendText(ctx, "+15552222222", "hi", notification.ChannelSMS)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, fake.params)
}

type fakeFCM struct {
	msg *messaging.Message
	err error
}

func (f *fakeFCM) Send(_ context.Context, m *messaging.Message) (string, error) {
	f.msg = m
	return "projects/x/messages/1", f.err
}

func TestFCMPusher_BuildsWebpushMessage(t *testing.T) {
	fake := &fakeFCM{}
	p := &FCMPusher{client: fake}

	payload := notification.BuildPushPayload(notification.Event{
		Title:     "Booking confirmed",
		Body:      "See you there",
		ActionURL: "/bookings/b1",
		Data:      map[string]any{"booking_id": "b1", "amount": 1200},
	}, "/icon-192x192.png", "/badge-72x72.png")

	err := p.SendPush(context.Background(), notification.DeviceToken{ID: 1, Token: "tok"}, payload)
	require.NoError(t, err)

	require.NotNil(t, fake.msg)
	assert.Equal(t, "tok", fake.msg.Token)
	assert.Equal(t, "/bookings/b1", fake.msg.Webpush.FCMOptions.Link)
	assert.Equal(t, "/icon-192x192.png", fake.msg.Webpush.Notification.Icon)
	assert.Equal(t, "/badge-72x72.png", fake.msg.Webpush.Notification.Badge)
	assert.Equal(t, "b1", fake.msg.Data["booking_id"])
	assert.Equal(t, "1200", fake.msg.Data["amount"])
}

func TestFCMPusher_PropagatesError(t *testing.T) {
	p := &FCMPusher{client: &fakeFCM{err: errors.New("quota exceeded")}}
	err := p.SendPush(context.Background(), notification.DeviceToken{Token: "tok"}, notification.PushPayload{})
	assert.ErrorContains(t, err, "quota exceeded")
}

func TestStringData(t *testing.T) {
	out := stringData(map[string]any{
		"s":   "x",
		"n":   3,
		"b":   true,
		"m":   map[string]any{"k": "v"},
		"nil": nil,
	})
	assert.Equal(t, map[string]string{"s": "x", "n": "3", "b": "true", "m": `{"k":"v"}`}, out)
}

func TestConsole_ReportsSuccess(t *testing.T) {
	c := NewConsole(nil)
	id, err := c.SendEmail(context.Background(), "a@b.c", "s", "<p/>")
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	require.NoError(t, c.SendPush(context.Background(), notification.DeviceToken{}, notification.PushPayload{}))
}
