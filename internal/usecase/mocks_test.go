//go:build !integration

package usecase_test

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"telegram-payment-notifier/internal/domain"
	"telegram-payment-notifier/internal/domain/model"
	"telegram-payment-notifier/internal/domain/ports/adapter"
)

// newTestLogger creates a silent logger for tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(nil)
	return &logger
}

// MockPaymentGateway implements adapter.PaymentGateway with overridable funcs.
type MockPaymentGateway struct {
	CreatePaymentFunc  func(ctx context.Context, params adapter.CreatePaymentParams) (*model.Payment, error)
	FindPaymentFunc    func(ctx context.Context, paymentID string) (*model.Payment, error)
	CapturePaymentFunc func(ctx context.Context, paymentID string, amount *model.Amount) (*model.Payment, error)
	CancelPaymentFunc  func(ctx context.Context, paymentID string) (*model.Payment, error)

	CreateCalls  []adapter.CreatePaymentParams
	CaptureCalls int
}

func (m *MockPaymentGateway) Name() string { return "mock" }

func (m *MockPaymentGateway) CreatePayment(ctx context.Context, params adapter.CreatePaymentParams) (*model.Payment, error) {
	m.CreateCalls = append(m.CreateCalls, params)
	if m.CreatePaymentFunc != nil {
		return m.CreatePaymentFunc(ctx, params)
	}
	return &model.Payment{
		ID:              "pay-created",
		Status:          model.PaymentStatusPending,
		Amount:          params.Amount,
		Description:     params.Description,
		Metadata:        params.Metadata,
		ConfirmationURL: "https://pay.example/confirm/pay-created",
	}, nil
}

func (m *MockPaymentGateway) FindPayment(ctx context.Context, paymentID string) (*model.Payment, error) {
	if m.FindPaymentFunc != nil {
		return m.FindPaymentFunc(ctx, paymentID)
	}
	return nil, domain.ErrNotFound
}

func (m *MockPaymentGateway) CapturePayment(ctx context.Context, paymentID string, amount *model.Amount) (*model.Payment, error) {
	m.CaptureCalls++
	if m.CapturePaymentFunc != nil {
		return m.CapturePaymentFunc(ctx, paymentID, amount)
	}
	return &model.Payment{ID: paymentID, Status: model.PaymentStatusSucceeded}, nil
}

func (m *MockPaymentGateway) CancelPayment(ctx context.Context, paymentID string) (*model.Payment, error) {
	if m.CancelPaymentFunc != nil {
		return m.CancelPaymentFunc(ctx, paymentID)
	}
	return &model.Payment{ID: paymentID, Status: model.PaymentStatusCanceled}, nil
}

// MockNotifier records delivered messages.
type MockNotifier struct {
	mu              sync.Mutex
	SendMessageFunc func(ctx context.Context, chatID int64, text string) error
	Messages        []string
}

func (m *MockNotifier) SendMessage(ctx context.Context, chatID int64, text string) error {
	m.mu.Lock()
	m.Messages = append(m.Messages, text)
	m.mu.Unlock()
	if m.SendMessageFunc != nil {
		return m.SendMessageFunc(ctx, chatID, text)
	}
	return nil
}

// MockRetryPlanner records scheduled and canceled retries.
type MockRetryPlanner struct {
	ScheduleFunc func(ctx context.Context, task *model.RetryTask) error
	CancelFunc   func(ctx context.Context, paymentID string) error

	Scheduled []*model.RetryTask
	Canceled  []string
}

func (m *MockRetryPlanner) Schedule(ctx context.Context, task *model.RetryTask) error {
	m.Scheduled = append(m.Scheduled, task)
	if m.ScheduleFunc != nil {
		return m.ScheduleFunc(ctx, task)
	}
	return nil
}

func (m *MockRetryPlanner) Cancel(ctx context.Context, paymentID string) error {
	m.Canceled = append(m.Canceled, paymentID)
	if m.CancelFunc != nil {
		return m.CancelFunc(ctx, paymentID)
	}
	return nil
}

// MockRecipientStore is an in-memory recipient store.
type MockRecipientStore struct {
	ID      int64
	Set     bool
	SaveErr error
}

func (m *MockRecipientStore) Get(ctx context.Context) (int64, error) {
	if !m.Set {
		return 0, domain.ErrNoRecipient
	}
	return m.ID, nil
}

func (m *MockRecipientStore) Save(ctx context.Context, chatID int64) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.ID = chatID
	m.Set = true
	return nil
}

// MockDiscoverer returns a fixed chat ID.
type MockDiscoverer struct {
	ID    int64
	Err   error
	Calls int
}

func (m *MockDiscoverer) DiscoverChatID(ctx context.Context) (int64, error) {
	m.Calls++
	return m.ID, m.Err
}
