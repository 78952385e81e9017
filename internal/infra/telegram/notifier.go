package telegram

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"telegram-payment-notifier/internal/domain"
	"telegram-payment-notifier/internal/domain/ports/adapter"
	"telegram-payment-notifier/internal/infra/sched"
)

// botClient is the slice of tgbotapi.BotAPI the notifier actually uses.
type botClient interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdates(config tgbotapi.UpdateConfig) ([]tgbotapi.Update, error)
}

// Notifier delivers payment status messages to one Telegram chat.
type Notifier struct {
	bot botClient
	log *zerolog.Logger
}

var _ adapter.Notifier = (*Notifier)(nil)

func NewNotifier(token string, log *zerolog.Logger) (*Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	return &Notifier{bot: bot, log: log}, nil
}

// SendMessage sends a plain text message to the chat. tgbotapi does not take a
// context, so cancellation is only checked up front.
func (n *Notifier) SendMessage(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrDelivery, err)
	}
	return nil
}

// DiscoverChatID polls getUpdates until someone messages the bot, for up to 30
// one-second attempts, and returns that chat's ID. Used only on first boot
// when no recipient is configured or stored.
func (n *Notifier) DiscoverChatID(ctx context.Context) (int64, error) {
	n.log.Info().Msg("waiting for a message to the bot to discover the chat id")
	var chatID int64
	err := sched.Do(ctx, 30, time.Second, func(ctx context.Context) error {
		updates, err := n.bot.GetUpdates(tgbotapi.UpdateConfig{Timeout: 1})
		if err != nil {
			return err
		}
		for i := len(updates) - 1; i >= 0; i-- {
			if updates[i].Message != nil && updates[i].Message.Chat != nil {
				chatID = updates[i].Message.Chat.ID
				return nil
			}
		}
		return domain.ErrNoRecipient
	})
	if err != nil {
		return 0, fmt.Errorf("discover chat id: %w", err)
	}
	n.log.Info().Int64("chat_id", chatID).Msg("chat id discovered")
	return chatID, nil
}
