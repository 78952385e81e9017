// File: internal/usecase/payment_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"telegram-payment-notifier/internal/domain"
	"telegram-payment-notifier/internal/domain/model"
	"telegram-payment-notifier/internal/domain/ports/adapter"
	"telegram-payment-notifier/internal/infra/metrics"
)

// User-facing texts are Russian, matching what the production chat expects.
const (
	defaultCurrency             = "RUB"
	defaultDescription          = "Оплата товара"
	defaultRecurrentDescription = "Рекуррентный платеж"
)

// RetryPlanner is the slice of the retry scheduler the payment flow needs.
type RetryPlanner interface {
	Schedule(ctx context.Context, task *model.RetryTask) error
	Cancel(ctx context.Context, paymentID string) error
}

// Compile-time check
var _ PaymentUseCase = (*paymentUC)(nil)

type PaymentUseCase interface {
	// Create opens a payment with the provider and returns it including the
	// confirmation URL the caller must redirect to.
	Create(ctx context.Context, params CreateParams) (*model.Payment, error)
	// Result re-fetches a payment's state and reacts once: notifications,
	// capture, or a scheduled recreation, depending on the status.
	Result(ctx context.Context, userID, paymentID string) (*Result, error)
	// Webhook reacts to a provider event by re-fetching the payment and
	// notifying the chat.
	Webhook(ctx context.Context, event WebhookEvent) error
	// RecreateFromTask re-creates a canceled payment from a scheduled task.
	RecreateFromTask(ctx context.Context, task *model.RetryTask) (*model.Payment, error)
	// NotifyRetrySucceeded / NotifyRetryExhausted report background retry
	// outcomes to the chat.
	NotifyRetrySucceeded(ctx context.Context, task *model.RetryTask, payment *model.Payment)
	NotifyRetryExhausted(ctx context.Context, task *model.RetryTask)
}

type CreateParams struct {
	Amount      string // decimal string as submitted, e.g. "100.00"
	Currency    string // defaults to RUB
	Description string // defaults per flow
	UserID      string
	ReturnURL   string // defaults to {publicURL}/payment_result/{userID}
	Recurrent   bool
}

// Result is the outcome of one reconciliation pass over a payment.
type Result struct {
	Status         model.PaymentStatus
	Message        string
	RetryScheduled bool
}

type WebhookEvent struct {
	Event     string
	PaymentID string
}

type paymentUC struct {
	gateway     adapter.PaymentGateway
	notifier    adapter.Notifier
	retries     RetryPlanner
	chatID      int64
	publicURL   string
	maxAttempts int
	log         *zerolog.Logger
}

func NewPaymentUseCase(
	gateway adapter.PaymentGateway,
	notifier adapter.Notifier,
	retries RetryPlanner,
	chatID int64,
	publicURL string,
	maxAttempts int,
	log *zerolog.Logger,
) *paymentUC {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &paymentUC{
		gateway:     gateway,
		notifier:    notifier,
		retries:     retries,
		chatID:      chatID,
		publicURL:   publicURL,
		maxAttempts: maxAttempts,
		log:         log,
	}
}

func (u *paymentUC) Create(ctx context.Context, params CreateParams) (*model.Payment, error) {
	if params.UserID == "" {
		return nil, fmt.Errorf("%w: user_id is required", domain.ErrInvalidArgument)
	}
	amount, err := strconv.ParseFloat(params.Amount, 64)
	if err != nil || amount <= 0 {
		return nil, fmt.Errorf("%w: amount %q", domain.ErrInvalidArgument, params.Amount)
	}
	currency := params.Currency
	if currency == "" {
		currency = defaultCurrency
	}
	description := params.Description
	if description == "" {
		description = defaultDescription
		if params.Recurrent {
			description = defaultRecurrentDescription
		}
	}
	returnURL := params.ReturnURL
	if returnURL == "" || params.Recurrent {
		returnURL = u.resultURL(params.UserID)
	}
	metadata := map[string]string{"user_id": params.UserID}
	if params.Recurrent {
		metadata["is_recurrent"] = "true"
	}

	payment, err := u.gateway.CreatePayment(ctx, adapter.CreatePaymentParams{
		Amount:      model.Amount{Value: params.Amount, Currency: currency},
		Description: description,
		ReturnURL:   returnURL,
		Metadata:    metadata,
		Capture:     true,
	})
	if err != nil {
		return nil, err
	}
	metrics.IncPayment(string(payment.Status))
	u.log.Info().Str("payment_id", payment.ID).Str("user_id", params.UserID).
		Str("amount", params.Amount).Str("currency", currency).Bool("recurrent", params.Recurrent).
		Msg("payment created")
	return payment, nil
}

func (u *paymentUC) Result(ctx context.Context, userID, paymentID string) (*Result, error) {
	p, err := u.gateway.FindPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	metrics.IncPayment(string(p.Status))

	switch p.Status {
	case model.PaymentStatusSucceeded:
		u.notify(ctx, fmt.Sprintf("Платеж %s на сумму %s %s успешно завершен.", p.ID, p.Amount.Value, p.Amount.Currency))
		return &Result{Status: p.Status, Message: "Платеж успешно завершен!"}, nil

	case model.PaymentStatusPending:
		return &Result{Status: p.Status, Message: "Платеж ожидает подтверждения."}, nil

	case model.PaymentStatusWaitingForCapture:
		u.notify(ctx, fmt.Sprintf("Платеж %s ожидает списания средств.", p.ID))
		captured, capErr := u.gateway.CapturePayment(ctx, p.ID, nil)
		if capErr == nil && captured.Status == model.PaymentStatusSucceeded {
			metrics.IncCapture("succeeded")
			u.notify(ctx, fmt.Sprintf("Средства по платежу %s успешно списаны.", p.ID))
		} else {
			metrics.IncCapture("failed")
			u.notify(ctx, fmt.Sprintf("Не удалось списать средства по платежу %s.", p.ID))
		}
		return &Result{Status: p.Status, Message: "Платеж ожидает списания."}, nil

	case model.PaymentStatusCanceled:
		reason := ""
		if p.Cancellation != nil {
			reason = p.Cancellation.Reason
		}
		u.notify(ctx, fmt.Sprintf("Платеж %s отменен. Причина: %s", p.ID, reason))
		if reason == model.CancelReasonByMerchant {
			return &Result{Status: p.Status, Message: "Платеж отменен."}, nil
		}
		task := &model.RetryTask{
			ID:          ulid.Make().String(),
			PaymentID:   p.ID,
			UserID:      userID,
			Amount:      p.Amount,
			Description: p.Description,
			ReturnURL:   u.resultURL(userID),
			Metadata:    p.Metadata,
			MaxAttempts: u.maxAttempts,
		}
		if err := u.retries.Schedule(ctx, task); err != nil {
			u.log.Error().Str("payment_id", p.ID).Err(err).Msg("failed to schedule payment retry")
			return &Result{Status: p.Status, Message: "Платеж отменен, и повторные попытки не удались."}, nil
		}
		return &Result{
			Status:         p.Status,
			Message:        "Платеж отменен. Повторное создание платежа запланировано.",
			RetryScheduled: true,
		}, nil

	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownStatus, p.Status)
	}
}

func (u *paymentUC) Webhook(ctx context.Context, event WebhookEvent) error {
	switch event.Event {
	case "payment.succeeded":
		p, err := u.gateway.FindPayment(ctx, event.PaymentID)
		if err != nil {
			return err
		}
		u.notify(ctx, fmt.Sprintf("Платеж %s успешно завершен (через webhook).", p.ID))
		// Payment completed through another channel: drop any pending retry.
		if err := u.retries.Cancel(ctx, p.ID); err != nil && !errors.Is(err, domain.ErrTaskNotFound) {
			u.log.Error().Str("payment_id", p.ID).Err(err).Msg("failed to cancel pending retry")
		}
		return nil

	case "payment.waiting_for_capture":
		p, err := u.gateway.FindPayment(ctx, event.PaymentID)
		if err != nil {
			return err
		}
		u.notify(ctx, fmt.Sprintf("Платеж %s ожидает списания средств (webhook).", p.ID))
		return nil

	case "payment.canceled":
		p, err := u.gateway.FindPayment(ctx, event.PaymentID)
		if err != nil {
			return err
		}
		reason := ""
		if p.Cancellation != nil {
			reason = p.Cancellation.Reason
		}
		u.notify(ctx, fmt.Sprintf("Платеж %s отменен (через webhook). Причина: %s", p.ID, reason))
		return nil

	default:
		u.log.Debug().Str("event", event.Event).Msg("ignoring unknown webhook event")
		return nil
	}
}

// RecreateFromTask is the scheduler's create action. The gateway mints a fresh
// idempotence key for every attempt, so the provider sees each retry as a new
// payment rather than a duplicate of the previous one.
func (u *paymentUC) RecreateFromTask(ctx context.Context, task *model.RetryTask) (*model.Payment, error) {
	payment, err := u.gateway.CreatePayment(ctx, adapter.CreatePaymentParams{
		Amount:      task.Amount,
		Description: task.Description,
		ReturnURL:   task.ReturnURL,
		Metadata:    task.Metadata,
		Capture:     true,
	})
	if err != nil {
		return nil, err
	}
	metrics.IncPayment(string(payment.Status))
	return payment, nil
}

func (u *paymentUC) NotifyRetrySucceeded(ctx context.Context, task *model.RetryTask, payment *model.Payment) {
	u.notify(ctx, fmt.Sprintf("Повторный платеж %s создан вместо отмененного %s. Ссылка для оплаты: %s",
		payment.ID, task.PaymentID, payment.ConfirmationURL))
}

func (u *paymentUC) NotifyRetryExhausted(ctx context.Context, task *model.RetryTask) {
	u.notify(ctx, fmt.Sprintf("Платеж %s отменен, и повторные попытки не удались.", task.PaymentID))
}

func (u *paymentUC) resultURL(userID string) string {
	return fmt.Sprintf("%s/payment_result/%s", u.publicURL, userID)
}

// notify delivers a chat message best-effort: a failed delivery is logged and
// counted but never fails the payment flow that triggered it.
func (u *paymentUC) notify(ctx context.Context, text string) {
	if err := u.notifier.SendMessage(ctx, u.chatID, text); err != nil {
		metrics.IncNotification("error")
		u.log.Error().Err(err).Msg("notification delivery failed")
		return
	}
	metrics.IncNotification("ok")
}
