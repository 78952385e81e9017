package adapter

import (
	"context"

	"telegram-payment-notifier/internal/domain/model"
)

// CreatePaymentParams carries everything the provider needs to open a payment
// with a redirect confirmation flow.
type CreatePaymentParams struct {
	Amount      model.Amount
	Description string
	ReturnURL   string
	Metadata    map[string]string
	Capture     bool
}

// PaymentGateway wraps the external payment processor. Every mutating call
// attaches a fresh idempotence key so transport-level retries by the HTTP
// client are deduplicated on the provider side.
type PaymentGateway interface {
	Name() string

	// CreatePayment opens a new payment and returns it including the
	// confirmation URL the payer must be redirected to.
	CreatePayment(ctx context.Context, params CreatePaymentParams) (*model.Payment, error)

	// FindPayment fetches current payment state by provider ID.
	// Returns domain.ErrNotFound when the provider reports no such payment.
	FindPayment(ctx context.Context, paymentID string) (*model.Payment, error)

	// CapturePayment finalizes a held payment, fully (amount nil) or partially.
	CapturePayment(ctx context.Context, paymentID string, amount *model.Amount) (*model.Payment, error)

	// CancelPayment cancels a held payment.
	CancelPayment(ctx context.Context, paymentID string) (*model.Payment, error)
}
