package alert

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"

	"github.com/cofrn/cofrn-monitor/internal/logger"
)

// ResendAPI is the subset of the Resend emails service used by ResendProvider.
type ResendAPI interface {
	Send(params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// ResendProvider sends email through the Resend API.
type ResendProvider struct {
	emails ResendAPI
}

// NewResendProvider creates a provider from an API key. An empty key leaves it unconfigured.
func NewResendProvider(apiKey string) *ResendProvider {
	if apiKey == "" {
		return &ResendProvider{}
	}

	return &ResendProvider{
		emails: resend.NewClient(apiKey).Emails,
	}
}

// Name returns the provider name.
func (p *ResendProvider) Name() string {
	return ProviderResend
}

// IsConfigured reports whether an API client is present.
func (p *ResendProvider) IsConfigured() bool {
	return p.emails != nil
}

// Send sends msg as a plain text email.
func (p *ResendProvider) Send(ctx context.Context, msg *Message) error {
	if p.emails == nil {
		return errProviderUnconfigured
	}

	if len(msg.To) == 0 {
		return errNoRecipients
	}

	result, err := p.emails.Send(&resend.SendEmailRequest{
		From:    msg.From,
		To:      msg.To,
		Subject: msg.Subject,
		Text:    msg.Body,
	})
	if err != nil {
		return fmt.Errorf("send email via resend: %w", err)
	}

	logger.InfoKV(ctx, "Alert sent via Resend",
		"message_id", msg.ID,
		"resend_id", result.Id,
		"to", msg.To)

	return nil
}
