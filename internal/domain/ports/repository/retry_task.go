package repository

import (
	"context"
	"time"

	"telegram-payment-notifier/internal/domain/model"
)

// RetryTaskStore is the durable queue of scheduled payment recreations.
// Tasks are keyed by the canceled payment's ID; saving twice for the same
// payment re-arms the existing slot.
type RetryTaskStore interface {
	Save(ctx context.Context, task *model.RetryTask) error

	// FindByPaymentID returns domain.ErrTaskNotFound when no task is pending.
	FindByPaymentID(ctx context.Context, paymentID string) (*model.RetryTask, error)

	// ListDue returns up to limit tasks whose NextAttemptAt is not after now.
	ListDue(ctx context.Context, now time.Time, limit int64) ([]*model.RetryTask, error)

	// List returns all pending tasks ordered by NextAttemptAt.
	List(ctx context.Context) ([]*model.RetryTask, error)

	// Delete removes a pending task. Returns domain.ErrTaskNotFound when
	// nothing was pending for the payment.
	Delete(ctx context.Context, paymentID string) error
}
