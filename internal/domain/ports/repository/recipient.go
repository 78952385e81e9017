package repository

import "context"

// RecipientStore persists the resolved notification chat ID across process
// restarts, replacing the one-time getUpdates discovery on the next boot.
type RecipientStore interface {
	// Get returns the stored chat ID, or domain.ErrNoRecipient when absent.
	Get(ctx context.Context) (int64, error)
	Save(ctx context.Context, chatID int64) error
}
