package alert

import (
	"context"
	"fmt"

	"github.com/cofrn/cofrn-monitor/internal/config"
)

// NewFromConfig builds a dispatcher with every known provider registered.
// ses may be nil when no AWS configuration is available; the SES provider then
// stays unconfigured and is skipped.
func NewFromConfig(ctx context.Context, cfg config.Alerts, ses SESAPI) (*Dispatcher, error) {
	registry := NewRegistry()
	registry.Register(ctx, LogProvider{})
	registry.Register(ctx, NewResendProvider(cfg.ResendAPIKey))
	registry.Register(ctx, NewSESProvider(ses))

	if err := registry.SetPrimary(cfg.Provider); err != nil {
		return nil, fmt.Errorf("set primary alert provider: %w", err)
	}

	if err := registry.SetFallback(cfg.Fallback...); err != nil {
		return nil, fmt.Errorf("set fallback alert providers: %w", err)
	}

	return NewDispatcher(registry, cfg.From, cfg.Categories), nil
}
