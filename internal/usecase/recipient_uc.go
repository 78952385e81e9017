// File: internal/usecase/recipient_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"telegram-payment-notifier/internal/domain"
	"telegram-payment-notifier/internal/domain/ports/repository"
)

// ChatDiscoverer waits for someone to message the bot and returns that chat's ID.
type ChatDiscoverer interface {
	DiscoverChatID(ctx context.Context) (int64, error)
}

// ResolveRecipient determines the notification chat ID before the server
// starts: explicit config wins, then the persisted store, then a bounded
// getUpdates discovery whose result is stored for the next boot.
func ResolveRecipient(ctx context.Context, configured int64, store repository.RecipientStore, disc ChatDiscoverer, log *zerolog.Logger) (int64, error) {
	if configured != 0 {
		return configured, nil
	}

	id, err := store.Get(ctx)
	if err == nil {
		log.Info().Int64("chat_id", id).Msg("recipient loaded from store")
		return id, nil
	}
	if !errors.Is(err, domain.ErrNoRecipient) {
		return 0, fmt.Errorf("resolve recipient: %w", err)
	}

	id, err = disc.DiscoverChatID(ctx)
	if err != nil {
		return 0, fmt.Errorf("resolve recipient: %w", err)
	}
	if err := store.Save(ctx, id); err != nil {
		// Discovery still produced a usable ID; persisting is best-effort.
		log.Warn().Err(err).Msg("failed to persist discovered recipient")
	}
	return id, nil
}
