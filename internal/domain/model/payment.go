package model

import "time"

type PaymentStatus string

const (
	PaymentStatusCreated           PaymentStatus = "created"             // just created on provider side
	PaymentStatusPending           PaymentStatus = "pending"             // payer redirected to gateway; awaiting confirmation
	PaymentStatusWaitingForCapture PaymentStatus = "waiting_for_capture" // authorized; funds held until capture
	PaymentStatusSucceeded         PaymentStatus = "succeeded"           // captured OK at provider
	PaymentStatusCanceled          PaymentStatus = "canceled"            // canceled by payer, merchant or provider
)

// CancelReasonByMerchant marks a deliberate merchant-side cancellation.
// Payments canceled for any other reason are eligible for a retried recreation.
const CancelReasonByMerchant = "canceled_by_merchant"

// Amount is a monetary value as the provider represents it: a decimal string
// plus an ISO currency code. Kept as a string end to end to avoid float drift.
type Amount struct {
	Value    string
	Currency string
}

// CancellationDetails is present only on canceled payments.
type CancellationDetails struct {
	Party  string
	Reason string
}

// Payment mirrors the provider-owned payment entity. The provider owns and
// mutates it; we only read it through the gateway and never persist a copy.
type Payment struct {
	ID              string
	Status          PaymentStatus
	Paid            bool
	Amount          Amount
	Description     string
	ConfirmationURL string // redirect target where the payer confirms the payment
	Metadata        map[string]string
	Cancellation    *CancellationDetails // nil unless Status == canceled
	CreatedAt       time.Time
}
