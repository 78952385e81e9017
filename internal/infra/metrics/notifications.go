package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(notificationsTotal)
}

var notificationsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "notifications_total",
		Help: "Chat notifications by delivery result.",
	},
	[]string{"result"},
)

func IncNotification(result string) {
	notificationsTotal.WithLabelValues(norm(result)).Inc()
}
