package alert

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/cofrn/cofrn-monitor/internal/logger"
)

// SESAPI is the subset of the SES v2 client used by SESProvider.
type SESAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESProvider sends email through Amazon SES.
type SESProvider struct {
	client SESAPI
}

// NewSESProvider creates an SES provider. A nil client leaves it unconfigured.
func NewSESProvider(client SESAPI) *SESProvider {
	return &SESProvider{client: client}
}

// Name returns the provider name.
func (p *SESProvider) Name() string {
	return ProviderSES
}

// IsConfigured reports whether an SES client is present.
func (p *SESProvider) IsConfigured() bool {
	return p.client != nil
}

// Send sends msg as a plain text email.
func (p *SESProvider) Send(ctx context.Context, msg *Message) error {
	if p.client == nil {
		return errProviderUnconfigured
	}

	if len(msg.To) == 0 {
		return errNoRecipients
	}

	out, err := p.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(msg.From),
		Destination: &types.Destination{
			ToAddresses: msg.To,
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(msg.Subject)},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(msg.Body)},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("send email via ses: %w", err)
	}

	logger.InfoKV(ctx, "Alert sent via SES",
		"message_id", msg.ID,
		"ses_message_id", aws.ToString(out.MessageId),
		"to", msg.To)

	return nil
}
