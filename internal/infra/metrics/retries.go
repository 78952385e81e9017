package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		retryScheduledTotal,
		retryOutcomesTotal,
	)
}

var (
	retryScheduledTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "retry_tasks_scheduled_total",
			Help: "Payment recreation tasks scheduled.",
		},
	)

	retryOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retry_outcomes_total",
			Help: "Retry attempt outcomes (succeeded/failed_attempt/exhausted/canceled).",
		},
		[]string{"outcome"},
	)
)

func IncRetryScheduled() {
	retryScheduledTotal.Inc()
}

func IncRetryOutcome(outcome string) {
	retryOutcomesTotal.WithLabelValues(norm(outcome)).Inc()
}
