package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"telegram-payment-notifier/internal/domain"
	"telegram-payment-notifier/internal/usecase"
)

// handleCreatePayment opens a payment from form input and redirects the
// browser to the provider's confirmation page.
func (s *Server) handleCreatePayment(w http.ResponseWriter, r *http.Request) {
	s.createAndRedirect(w, r, false)
}

// handleCreateRecurrentPayment is the first payment of a recurring chain: the
// metadata is tagged and the return URL is fixed to the result endpoint.
func (s *Server) handleCreateRecurrentPayment(w http.ResponseWriter, r *http.Request) {
	s.createAndRedirect(w, r, true)
}

func (s *Server) createAndRedirect(w http.ResponseWriter, r *http.Request, recurrent bool) {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}
	params := usecase.CreateParams{
		Amount:      r.PostFormValue("amount"),
		Currency:    r.PostFormValue("currency"),
		Description: r.PostFormValue("description"),
		UserID:      r.PostFormValue("user_id"),
		Recurrent:   recurrent,
	}
	if !recurrent {
		params.ReturnURL = r.PostFormValue("return_url")
	}

	payment, err := s.payUC.Create(ctx, params)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.log.Error().Err(err).Msg("create payment failed")
		http.Error(w, "Failed to create payment", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, payment.ConfirmationURL, http.StatusFound)
}

// handlePaymentResult is where the provider redirects the payer after the
// confirmation flow. It re-fetches the payment state and reacts once.
func (s *Server) handlePaymentResult(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := chi.URLParam(r, "user_id")
	paymentID := r.URL.Query().Get("orderId")
	if paymentID == "" {
		http.Error(w, "Ошибка: Не указан ID платежа", http.StatusBadRequest)
		return
	}

	res, err := s.payUC.Result(ctx, userID, paymentID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			http.Error(w, "Ошибка: Платеж не найден", http.StatusBadRequest)
		case errors.Is(err, domain.ErrUnknownStatus):
			http.Error(w, fmt.Sprintf("Неизвестный статус платежа: %v", err), http.StatusInternalServerError)
		default:
			s.log.Error().Str("payment_id", paymentID).Err(err).Msg("payment result failed")
			http.Error(w, "Failed to get payment status", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(res.Message))
}

type webhookRequest struct {
	Event  string `json:"event"`
	Object struct {
		ID string `json:"id"`
	} `json:"object"`
}

// handleWebhook acknowledges every provider event with 200. Processing errors
// are logged only: a non-200 would make the provider redeliver in a storm.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req webhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.log.Error().Err(err).Msg("webhook: malformed body")
	} else if err := s.payUC.Webhook(ctx, usecase.WebhookEvent{Event: req.Event, PaymentID: req.Object.ID}); err != nil {
		s.log.Error().Str("event", req.Event).Str("payment_id", req.Object.ID).Err(err).Msg("webhook: processing failed")
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) handleRetriesList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tasks, err := s.retries.List(ctx)
	if err != nil {
		http.Error(w, "Failed to list retry tasks", http.StatusInternalServerError)
		return
	}

	type taskItem struct {
		PaymentID     string    `json:"payment_id"`
		UserID        string    `json:"user_id"`
		Amount        string    `json:"amount"`
		Currency      string    `json:"currency"`
		Attempt       int       `json:"attempt"`
		MaxAttempts   int       `json:"max_attempts"`
		NextAttemptAt time.Time `json:"next_attempt_at"`
		CreatedAt     time.Time `json:"created_at"`
	}
	items := make([]taskItem, 0, len(tasks))
	for _, t := range tasks {
		items = append(items, taskItem{
			PaymentID:     t.PaymentID,
			UserID:        t.UserID,
			Amount:        t.Amount.Value,
			Currency:      t.Amount.Currency,
			Attempt:       t.Attempt,
			MaxAttempts:   t.MaxAttempts,
			NextAttemptAt: t.NextAttemptAt,
			CreatedAt:     t.CreatedAt,
		})
	}

	response := struct {
		Data []taskItem `json:"data"`
	}{Data: items}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(response)
}

func (s *Server) handleRetryCancel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	paymentID := chi.URLParam(r, "payment_id")
	if err := s.retries.Cancel(ctx, paymentID); err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, "Failed to cancel retry task", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
