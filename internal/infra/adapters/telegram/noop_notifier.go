package telegram

import (
	"context"

	"github.com/rs/zerolog"

	"zoo-assistant/internal/domain/ports/adapter"
)

var _ adapter.Notifier = (*NoopNotifier)(nil)

// NoopNotifier logs alerts instead of sending them. Used when no bot token is configured.
type NoopNotifier struct {
	log *zerolog.Logger
}

func NewNoopNotifier(logger *zerolog.Logger) *NoopNotifier {
	return &NoopNotifier{log: logger}
}

func (n *NoopNotifier) Notify(ctx context.Context, text string) error {
	n.log.Debug().Str("component", "NoopNotifier").Str("text", text).Msg("notification suppressed")
	return nil
}
