package alert

import (
	"context"

	"github.com/cofrn/cofrn-monitor/internal/logger"
)

// LogProvider writes alerts to the process log instead of sending email.
type LogProvider struct{}

// Name returns the provider name.
func (LogProvider) Name() string {
	return ProviderLog
}

// IsConfigured always reports true.
func (LogProvider) IsConfigured() bool {
	return true
}

// Send logs the message at warn level.
func (LogProvider) Send(ctx context.Context, msg *Message) error {
	logger.WarnKV(ctx, "Alert",
		"message_id", msg.ID,
		"category", msg.Category,
		"to", msg.To,
		"subject", msg.Subject,
		"body", msg.Body)

	return nil
}
