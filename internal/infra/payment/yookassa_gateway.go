package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"telegram-payment-notifier/internal/domain"
	"telegram-payment-notifier/internal/domain/model"
	"telegram-payment-notifier/internal/domain/ports/adapter"
)

const DefaultBaseURL = "https://api.yookassa.ru/v3"

// YooKassaGateway implements adapter.PaymentGateway using direct HTTP calls
// against the YooKassa v3 API. Mutating calls carry an Idempotence-Key header
// minted by the injected KeyGenerator.
type YooKassaGateway struct {
	shopID    string
	secretKey string
	baseURL   string
	keys      KeyGenerator
	client    *http.Client
}

func NewYooKassaGateway(shopID, secretKey, baseURL string, keys KeyGenerator) *YooKassaGateway {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if keys == nil {
		keys = UUIDKeyGenerator{}
	}
	return &YooKassaGateway{
		shopID:    shopID,
		secretKey: secretKey,
		baseURL:   baseURL,
		keys:      keys,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (g *YooKassaGateway) Name() string { return "yookassa" }

// yooAmount is the provider's decimal-string money representation.
type yooAmount struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

type yooConfirmation struct {
	Type            string `json:"type"`
	ReturnURL       string `json:"return_url,omitempty"`
	ConfirmationURL string `json:"confirmation_url,omitempty"`
}

type yooCancellation struct {
	Party  string `json:"party"`
	Reason string `json:"reason"`
}

type createPaymentRequest struct {
	Amount       yooAmount         `json:"amount"`
	Capture      bool              `json:"capture"`
	Confirmation yooConfirmation   `json:"confirmation"`
	Description  string            `json:"description,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

type capturePaymentRequest struct {
	Amount *yooAmount `json:"amount,omitempty"`
}

type paymentResponse struct {
	ID           string            `json:"id"`
	Status       string            `json:"status"`
	Paid         bool              `json:"paid"`
	Amount       yooAmount         `json:"amount"`
	Confirmation *yooConfirmation  `json:"confirmation,omitempty"`
	Description  string            `json:"description,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	Cancellation *yooCancellation  `json:"cancellation_details,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
}

type errorResponse struct {
	Type        string `json:"type"`
	Code        string `json:"code"`
	Description string `json:"description"`
}

// CreatePayment implements adapter.PaymentGateway.CreatePayment with a
// redirect confirmation flow.
func (g *YooKassaGateway) CreatePayment(ctx context.Context, params adapter.CreatePaymentParams) (*model.Payment, error) {
	body := createPaymentRequest{
		Amount:  yooAmount{Value: params.Amount.Value, Currency: params.Amount.Currency},
		Capture: params.Capture,
		Confirmation: yooConfirmation{
			Type:      "redirect",
			ReturnURL: params.ReturnURL,
		},
		Description: params.Description,
		Metadata:    params.Metadata,
	}
	resp, err := g.do(ctx, http.MethodPost, "/payments", g.keys.Next(), body)
	if err != nil {
		return nil, err
	}
	return toModel(resp), nil
}

// FindPayment implements adapter.PaymentGateway.FindPayment.
func (g *YooKassaGateway) FindPayment(ctx context.Context, paymentID string) (*model.Payment, error) {
	resp, err := g.do(ctx, http.MethodGet, "/payments/"+paymentID, "", nil)
	if err != nil {
		return nil, err
	}
	return toModel(resp), nil
}

// CapturePayment implements adapter.PaymentGateway.CapturePayment. A nil
// amount captures the full held sum; a non-nil amount captures partially.
func (g *YooKassaGateway) CapturePayment(ctx context.Context, paymentID string, amount *model.Amount) (*model.Payment, error) {
	var body capturePaymentRequest
	if amount != nil {
		body.Amount = &yooAmount{Value: amount.Value, Currency: amount.Currency}
	}
	resp, err := g.do(ctx, http.MethodPost, "/payments/"+paymentID+"/capture", g.keys.Next(), body)
	if err != nil {
		return nil, err
	}
	return toModel(resp), nil
}

// CancelPayment implements adapter.PaymentGateway.CancelPayment.
func (g *YooKassaGateway) CancelPayment(ctx context.Context, paymentID string) (*model.Payment, error) {
	resp, err := g.do(ctx, http.MethodPost, "/payments/"+paymentID+"/cancel", g.keys.Next(), struct{}{})
	if err != nil {
		return nil, err
	}
	return toModel(resp), nil
}

// do performs one API round trip. idemKey is empty for read-only calls.
func (g *YooKassaGateway) do(ctx context.Context, method, path, idemKey string, body interface{}) (*paymentResponse, error) {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request data: %w", err)
		}
		reader = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(g.shopID, g.secretKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if idemKey != "" {
		req.Header.Set("Idempotence-Key", idemKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGateway, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.ErrNotFound
	}
	if resp.StatusCode >= 400 {
		var apiErr errorResponse
		if err := json.Unmarshal(raw, &apiErr); err == nil && apiErr.Code != "" {
			return nil, fmt.Errorf("%w: %s: %s", domain.ErrGateway, apiErr.Code, apiErr.Description)
		}
		return nil, fmt.Errorf("%w: status %d, body: %s", domain.ErrGateway, resp.StatusCode, string(raw))
	}

	var payment paymentResponse
	if err := json.Unmarshal(raw, &payment); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w, body: %s", err, string(raw))
	}
	return &payment, nil
}

func toModel(p *paymentResponse) *model.Payment {
	out := &model.Payment{
		ID:          p.ID,
		Status:      model.PaymentStatus(p.Status),
		Paid:        p.Paid,
		Amount:      model.Amount{Value: p.Amount.Value, Currency: p.Amount.Currency},
		Description: p.Description,
		Metadata:    p.Metadata,
		CreatedAt:   p.CreatedAt,
	}
	if p.Confirmation != nil {
		out.ConfirmationURL = p.Confirmation.ConfirmationURL
	}
	if p.Cancellation != nil {
		out.Cancellation = &model.CancellationDetails{Party: p.Cancellation.Party, Reason: p.Cancellation.Reason}
	}
	return out
}
