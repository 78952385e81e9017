package model

import "time"

// RetryTask is a scheduled recreation of a canceled payment. Tasks are keyed by
// the canceled payment's ID so a pending retry can be cancelled when the payer
// completes the payment through another channel.
type RetryTask struct {
	ID          string // ULID
	PaymentID   string // the canceled payment this task recreates
	UserID      string
	Amount      Amount
	Description string
	ReturnURL   string
	Metadata    map[string]string

	Attempt       int // failed attempts so far
	MaxAttempts   int
	NextAttemptAt time.Time
	CreatedAt     time.Time
}
