package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		paymentsTotal,
		paymentCapturesTotal,
	)
}

var (
	paymentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_total",
			Help: "Payments observed by status (created/pending/waiting_for_capture/succeeded/canceled).",
		},
		[]string{"status"},
	)

	paymentCapturesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_captures_total",
			Help: "Capture calls by result.",
		},
		[]string{"result"},
	)
)

func IncPayment(status string) {
	paymentsTotal.WithLabelValues(norm(status)).Inc()
}

func IncCapture(result string) {
	paymentCapturesTotal.WithLabelValues(norm(result)).Inc()
}
