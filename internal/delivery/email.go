package delivery

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
)

type resendEmails interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// ResendMailer sends transactional email through Resend.
type ResendMailer struct {
	emails resendEmails
	from   string
}

func NewResendMailer(apiKey, from string) *ResendMailer {
	client := resend.NewClient(apiKey)
	return &ResendMailer{emails: client.Emails, from: from}
}

func (m *ResendMailer) Provider() string { return "resend" }

func (m *ResendMailer) SendEmail(ctx context.Context, to, subject, htmlBody string) (string, error) {
	sent, err := m.emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{to},
		Subject: subject,
		Html:    htmlBody,
	})
	if err != nil {
		return "", fmt.Errorf("resend: %w", err)
	}
	return sent.Id, nil
}
