package telegram

import (
	"context"

	"github.com/rs/zerolog"

	"telegram-payment-notifier/internal/domain/ports/adapter"
)

// NoopNotifier logs messages instead of sending them. Used in dev mode.
type NoopNotifier struct {
	log *zerolog.Logger
}

var _ adapter.Notifier = (*NoopNotifier)(nil)

func NewNoopNotifier(log *zerolog.Logger) *NoopNotifier {
	return &NoopNotifier{log: log}
}

func (n *NoopNotifier) SendMessage(_ context.Context, chatID int64, text string) error {
	n.log.Info().Int64("chat_id", chatID).Str("text", text).Msg("noop notifier: message suppressed")
	return nil
}
