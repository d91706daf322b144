package alert

import (
	"context"
	"errors"
)

// Sender sends one alert text to everyone subscribed to category.
type Sender interface {
	Send(ctx context.Context, category, text string) error
}

// Message is one rendered email.
type Message struct {
	// ID correlates log lines of one delivery across providers.
	ID       string
	Category string
	From     string
	To       []string
	Subject  string
	Body     string
}

// Provider delivers rendered messages.
type Provider interface {
	// Name returns the provider name used in configuration.
	Name() string
	// Send delivers the message.
	Send(ctx context.Context, msg *Message) error
	// IsConfigured reports whether the provider can send at all.
	IsConfigured() bool
}

// Provider names accepted in configuration.
const (
	ProviderSES    = "ses"
	ProviderResend = "resend"
	ProviderLog    = "log"
)

var (
	errNoProvider           = errors.New("no configured alert provider available")
	errProviderNotFound     = errors.New("alert provider is not registered")
	errNoRecipients         = errors.New("no recipients specified")
	errProviderUnconfigured = errors.New("alert provider is not configured")
)
