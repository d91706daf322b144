package alert

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/multierr"

	"github.com/cofrn/cofrn-monitor/internal/logger"
)

// Registry manages providers with fallback support.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	primary   string
	fallback  []string
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Provider),
	}
}

// Register adds a provider to the registry, replacing one with the same name.
func (r *Registry) Register(ctx context.Context, provider Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.providers[provider.Name()] = provider

	logger.InfoKV(ctx, "Registered alert provider",
		"name", provider.Name(),
		"configured", provider.IsConfigured())
}

// SetPrimary selects the provider tried first.
func (r *Registry) SetPrimary(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.providers[name]; !ok {
		return fmt.Errorf("%w: %q", errProviderNotFound, name)
	}

	r.primary = name

	return nil
}

// SetFallback sets the providers tried, in order, when the primary fails.
func (r *Registry) SetFallback(names ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, name := range names {
		if _, ok := r.providers[name]; !ok {
			return fmt.Errorf("%w: %q", errProviderNotFound, name)
		}
	}

	r.fallback = slices.Clone(names)

	return nil
}

// Names returns the registered provider names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// Send delivers msg through the first provider that succeeds. Unconfigured
// providers are skipped. When every attempt fails the errors are combined.
func (r *Registry) Send(ctx context.Context, msg *Message) error {
	candidates := r.candidates()
	if len(candidates) == 0 {
		return errNoProvider
	}

	var errs error

	for i, provider := range candidates {
		err := provider.Send(ctx, msg)
		if err == nil {
			if i > 0 {
				logger.WarnKV(ctx, "Alert delivered by fallback provider",
					"message_id", msg.ID,
					"provider", provider.Name())
			}

			return nil
		}

		logger.ErrorKV(ctx, "Alert provider failed",
			"message_id", msg.ID,
			"provider", provider.Name(),
			"error", err)

		errs = multierr.Append(errs, fmt.Errorf("%s: %w", provider.Name(), err))
	}

	return errs
}

// candidates returns the configured providers in attempt order.
func (r *Registry) candidates() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order := append([]string{r.primary}, r.fallback...)
	result := make([]Provider, 0, len(order))
	seen := make(map[string]struct{}, len(order))

	for _, name := range order {
		if _, dup := seen[name]; dup {
			continue
		}

		seen[name] = struct{}{}

		if p, ok := r.providers[name]; ok && p.IsConfigured() {
			result = append(result, p)
		}
	}

	return result
}
