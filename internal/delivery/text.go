package delivery

import (
	"context"
	"fmt"
	"strings"

	"gigbook/internal/domain/notification"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

type twilioMessages interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// TwilioTexter sends SMS and WhatsApp messages through Twilio.
type TwilioTexter struct {
	api          twilioMessages
	smsFrom      string
	whatsAppFrom string
}

func NewTwilioTexter(accountSID, authToken, smsFrom, whatsAppFrom string) *TwilioTexter {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioTexter{api: client.Api, smsFrom: smsFrom, whatsAppFrom: whatsAppFrom}
}

func (t *TwilioTexter) Provider() string { return "twilio" }

// SendText sends body to a phone number. The Twilio client has no context
// support, so a cancelled ctx is only honoured before the request starts.
func (t *TwilioTexter) SendText(ctx context.Context, to, body string, ch notification.Channel) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	from := t.smsFrom
	if ch == notification.ChannelWhatsApp {
		from = t.whatsAppFrom
		to = whatsAppAddress(to)
		from = whatsAppAddress(from)
	}
	if from == "" {
		return "", fmt.Errorf("twilio: no sender configured for %s", ch)
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(from)
	params.SetBody(body)

	msg, err := t.api.CreateMessage(params)
	if err != nil {
		return "", fmt.Errorf("twilio: %w", err)
	}
	if msg.Sid == nil {
		return "", nil
	}
	return *msg.Sid, nil
}

func whatsAppAddress(number string) string {
	if number == "" || strings.HasPrefix(number, "whatsapp:") {
		return number
	}
	return "whatsapp:" + number
}
