package web

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"telegram-payment-notifier/internal/domain/model"
	"telegram-payment-notifier/internal/usecase"
)

// RetryAdmin is the slice of the retry scheduler exposed to operators.
type RetryAdmin interface {
	List(ctx context.Context) ([]*model.RetryTask, error)
	Cancel(ctx context.Context, paymentID string) error
}

type Server struct {
	payUC   usecase.PaymentUseCase
	retries RetryAdmin
	apiKey  string
	log     *zerolog.Logger
}

func NewServer(payUC usecase.PaymentUseCase, retries RetryAdmin, apiKey string, logger *zerolog.Logger) *Server {
	return &Server{
		payUC:   payUC,
		retries: retries,
		apiKey:  apiKey,
		log:     logger,
	}
}

// Router builds the full route table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Post("/create_payment", s.handleCreatePayment)
	r.Post("/create_recurrent_payment", s.handleCreateRecurrentPayment)
	r.Get("/payment_result/{user_id}", s.handlePaymentResult)
	r.Post("/webhook", s.handleWebhook)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Operator surface for pending retries, behind the bearer key.
	r.Route("/api/v1/retries", func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Get("/", s.handleRetriesList)
		r.Delete("/{payment_id}", s.handleRetryCancel)
	})

	return r
}
