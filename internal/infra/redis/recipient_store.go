package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"telegram-payment-notifier/internal/domain"
	"telegram-payment-notifier/internal/domain/ports/repository"
)

const recipientKey = "notifier:chat_id"

// RecipientStore keeps the discovered notification chat ID so the getUpdates
// handshake only ever happens on the first boot.
type RecipientStore struct {
	cli RedisClient
}

var _ repository.RecipientStore = (*RecipientStore)(nil)

func NewRecipientStore(cli RedisClient) *RecipientStore {
	return &RecipientStore{cli: cli}
}

func (s *RecipientStore) Get(ctx context.Context) (int64, error) {
	raw, err := s.cli.Get(ctx, recipientKey)
	if err != nil {
		if errors.Is(err, Nil) {
			return 0, domain.ErrNoRecipient
		}
		return 0, fmt.Errorf("recipient store get: %w", err)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("recipient store: malformed chat id %q: %w", raw, err)
	}
	return id, nil
}

func (s *RecipientStore) Save(ctx context.Context, chatID int64) error {
	// No TTL: the recipient lives for as long as the deployment.
	return s.cli.Set(ctx, recipientKey, strconv.FormatInt(chatID, 10), 0)
}
