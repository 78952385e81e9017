package adapter

import "context"

// Notifier delivers a text message to a chat. One external call, no retry of
// its own, no batching.
type Notifier interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}
