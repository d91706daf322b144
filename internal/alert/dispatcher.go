package alert

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/cofrn/cofrn-monitor/internal/logger"
)

const subjectLimit = 120

// Dispatcher resolves categories to recipients and delivers through a Registry.
type Dispatcher struct {
	registry   *Registry
	from       string
	categories map[string][]string
	newID      func() string
}

// NewDispatcher creates a dispatcher. categories maps a category to its recipients.
func NewDispatcher(registry *Registry, from string, categories map[string][]string) *Dispatcher {
	cloned := make(map[string][]string, len(categories))
	for category, recipients := range categories {
		cloned[strings.ToLower(category)] = slices.Clone(recipients)
	}

	return &Dispatcher{
		registry:   registry,
		from:       from,
		categories: cloned,
		newID:      uuid.NewString,
	}
}

// Categories returns the configured categories in sorted order.
func (d *Dispatcher) Categories() []string {
	return slices.Sorted(maps.Keys(d.categories))
}

// Send delivers text to the recipients of category. A category without
// recipients is logged and skipped.
func (d *Dispatcher) Send(ctx context.Context, category, text string) error {
	msg := &Message{
		ID:       d.newID(),
		Category: category,
		From:     d.from,
		To:       d.categories[strings.ToLower(category)],
		Subject:  subject(category, text),
		Body:     text,
	}

	ctx = logger.WithKV(ctx, "message_id", msg.ID)

	if len(msg.To) == 0 {
		logger.WarnKV(ctx, "No recipients for alert category, skipping",
			"category", category,
			"body", text)

		return nil
	}

	if err := d.registry.Send(ctx, msg); err != nil {
		return fmt.Errorf("send %s alert: %w", category, err)
	}

	return nil
}

// subject uses the first line of text, truncated.
func subject(category, text string) string {
	line, _, _ := strings.Cut(text, "\n")

	runes := []rune(line)
	if len(runes) > subjectLimit {
		line = string(runes[:subjectLimit-3]) + "..."
	}

	return fmt.Sprintf("[COFRN %s] %s", category, line)
}
