//go:build !integration

package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"telegram-payment-notifier/internal/domain"
	"telegram-payment-notifier/internal/domain/model"
	"telegram-payment-notifier/internal/domain/ports/adapter"
)

// seqKeyGenerator returns predictable keys so tests can assert freshness.
type seqKeyGenerator struct{ n int }

func (g *seqKeyGenerator) Next() string {
	g.n++
	return fmt.Sprintf("key-%d", g.n)
}

func TestYooKassaGateway_CreatePayment(t *testing.T) {
	ctx := context.Background()

	t.Run("sends credentials, idempotence key and redirect confirmation", func(t *testing.T) {
		var gotReq createPaymentRequest
		var gotIdemKey, gotAuthUser, gotAuthPass string

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || r.URL.Path != "/payments" {
				t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			}
			gotIdemKey = r.Header.Get("Idempotence-Key")
			gotAuthUser, gotAuthPass, _ = r.BasicAuth()
			_ = json.NewDecoder(r.Body).Decode(&gotReq)

			_ = json.NewEncoder(w).Encode(paymentResponse{
				ID:     "pay-1",
				Status: "pending",
				Amount: yooAmount{Value: "100.00", Currency: "RUB"},
				Confirmation: &yooConfirmation{
					Type:            "redirect",
					ConfirmationURL: "https://pay.example/confirm/pay-1",
				},
			})
		}))
		defer srv.Close()

		g := NewYooKassaGateway("shop-1", "secret-1", srv.URL, &seqKeyGenerator{})
		p, err := g.CreatePayment(ctx, adapter.CreatePaymentParams{
			Amount:      model.Amount{Value: "100.00", Currency: "RUB"},
			Description: "Оплата товара",
			ReturnURL:   "http://localhost:5000/payment_result/user-1",
			Metadata:    map[string]string{"user_id": "user-1"},
			Capture:     true,
		})
		if err != nil {
			t.Fatalf("CreatePayment failed: %v", err)
		}

		if gotAuthUser != "shop-1" || gotAuthPass != "secret-1" {
			t.Errorf("unexpected basic auth %q:%q", gotAuthUser, gotAuthPass)
		}
		if gotIdemKey != "key-1" {
			t.Errorf("expected idempotence key, got %q", gotIdemKey)
		}
		if !gotReq.Capture {
			t.Error("expected capture to be requested")
		}
		if gotReq.Confirmation.Type != "redirect" || gotReq.Confirmation.ReturnURL != "http://localhost:5000/payment_result/user-1" {
			t.Errorf("unexpected confirmation: %+v", gotReq.Confirmation)
		}
		if p.ID != "pay-1" || p.Status != model.PaymentStatusPending {
			t.Errorf("unexpected payment: %+v", p)
		}
		if p.ConfirmationURL != "https://pay.example/confirm/pay-1" {
			t.Errorf("unexpected confirmation URL %q", p.ConfirmationURL)
		}
	})

	t.Run("mints a fresh idempotence key per call", func(t *testing.T) {
		var keys []string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			keys = append(keys, r.Header.Get("Idempotence-Key"))
			_ = json.NewEncoder(w).Encode(paymentResponse{ID: "pay-1", Status: "pending"})
		}))
		defer srv.Close()

		g := NewYooKassaGateway("shop-1", "secret-1", srv.URL, &seqKeyGenerator{})
		params := adapter.CreatePaymentParams{Amount: model.Amount{Value: "100.00", Currency: "RUB"}}
		if _, err := g.CreatePayment(ctx, params); err != nil {
			t.Fatalf("first create failed: %v", err)
		}
		if _, err := g.CreatePayment(ctx, params); err != nil {
			t.Fatalf("second create failed: %v", err)
		}

		if len(keys) != 2 || keys[0] == keys[1] {
			t.Errorf("expected two distinct keys, got %v", keys)
		}
	})

	t.Run("wraps API errors with code and description", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(errorResponse{
				Type:        "error",
				Code:        "invalid_request",
				Description: "Invalid amount value",
			})
		}))
		defer srv.Close()

		g := NewYooKassaGateway("shop-1", "secret-1", srv.URL, nil)
		_, err := g.CreatePayment(ctx, adapter.CreatePaymentParams{})
		if !errors.Is(err, domain.ErrGateway) {
			t.Fatalf("expected ErrGateway, got: %v", err)
		}
	})
}

func TestYooKassaGateway_FindPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("fetches without an idempotence key", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet || r.URL.Path != "/payments/pay-1" {
				t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			}
			if key := r.Header.Get("Idempotence-Key"); key != "" {
				t.Errorf("unexpected idempotence key %q on a read", key)
			}
			_ = json.NewEncoder(w).Encode(paymentResponse{
				ID:     "pay-1",
				Status: "canceled",
				Amount: yooAmount{Value: "100.00", Currency: "RUB"},
				Cancellation: &yooCancellation{
					Party:  "yoo_money",
					Reason: "expired_on_confirmation",
				},
			})
		}))
		defer srv.Close()

		g := NewYooKassaGateway("shop-1", "secret-1", srv.URL, nil)
		p, err := g.FindPayment(ctx, "pay-1")
		if err != nil {
			t.Fatalf("FindPayment failed: %v", err)
		}
		if p.Status != model.PaymentStatusCanceled {
			t.Errorf("unexpected status %q", p.Status)
		}
		if p.Cancellation == nil || p.Cancellation.Reason != "expired_on_confirmation" {
			t.Errorf("unexpected cancellation details: %+v", p.Cancellation)
		}
	})

	t.Run("maps 404 to ErrNotFound", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		g := NewYooKassaGateway("shop-1", "secret-1", srv.URL, nil)
		if _, err := g.FindPayment(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got: %v", err)
		}
	})
}

func TestYooKassaGateway_CapturePayment(t *testing.T) {
	ctx := context.Background()

	t.Run("full capture posts an empty amount", func(t *testing.T) {
		var rawBody map[string]interface{}
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/payments/pay-1/capture" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			if r.Header.Get("Idempotence-Key") == "" {
				t.Error("expected an idempotence key on capture")
			}
			_ = json.NewDecoder(r.Body).Decode(&rawBody)
			_ = json.NewEncoder(w).Encode(paymentResponse{ID: "pay-1", Status: "succeeded", Paid: true})
		}))
		defer srv.Close()

		g := NewYooKassaGateway("shop-1", "secret-1", srv.URL, nil)
		p, err := g.CapturePayment(ctx, "pay-1", nil)
		if err != nil {
			t.Fatalf("CapturePayment failed: %v", err)
		}
		if p.Status != model.PaymentStatusSucceeded || !p.Paid {
			t.Errorf("unexpected payment: %+v", p)
		}
		if _, ok := rawBody["amount"]; ok {
			t.Error("expected amount to be omitted for a full capture")
		}
	})

	t.Run("partial capture posts the amount", func(t *testing.T) {
		var gotReq capturePaymentRequest
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewDecoder(r.Body).Decode(&gotReq)
			_ = json.NewEncoder(w).Encode(paymentResponse{ID: "pay-1", Status: "succeeded"})
		}))
		defer srv.Close()

		g := NewYooKassaGateway("shop-1", "secret-1", srv.URL, nil)
		if _, err := g.CapturePayment(ctx, "pay-1", &model.Amount{Value: "50.00", Currency: "RUB"}); err != nil {
			t.Fatalf("CapturePayment failed: %v", err)
		}
		if gotReq.Amount == nil || gotReq.Amount.Value != "50.00" {
			t.Errorf("unexpected capture body: %+v", gotReq)
		}
	})
}

func TestYooKassaGateway_CancelPayment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/payments/pay-1/cancel" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(paymentResponse{
			ID:           "pay-1",
			Status:       "canceled",
			Cancellation: &yooCancellation{Party: "merchant", Reason: "canceled_by_merchant"},
		})
	}))
	defer srv.Close()

	g := NewYooKassaGateway("shop-1", "secret-1", srv.URL, nil)
	p, err := g.CancelPayment(context.Background(), "pay-1")
	if err != nil {
		t.Fatalf("CancelPayment failed: %v", err)
	}
	if p.Cancellation == nil || p.Cancellation.Reason != model.CancelReasonByMerchant {
		t.Errorf("unexpected cancellation details: %+v", p.Cancellation)
	}
}
