// Package notify delivers finished analysis verdicts to an external channel.
// Delivery is best-effort: a failed notification is logged and reported, but
// never fails the analysis run that produced the verdict.
package notify

import (
	"context"

	"tribunal/internal/adapters/config"
)

// Notifier sends a verdict message to the configured channel.
type Notifier interface {
	SendMessage(ctx context.Context, text string) error
}

// NoopNotifier is used when no channel is configured.
type NoopNotifier struct{}

func (NoopNotifier) SendMessage(context.Context, string) error { return nil }

// NewFromConfig returns a Telegram notifier when one is configured and
// enabled, a noop otherwise.
func NewFromConfig(cfg config.TelegramConfig) (Notifier, error) {
	if !cfg.Enabled {
		return NoopNotifier{}, nil
	}
	return NewTelegramNotifier(cfg.BotToken, cfg.ChatID)
}
