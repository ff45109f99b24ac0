package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		webhooksTotal,
		settledAmountTotal,
	)
}

var (
	webhooksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_webhooks_total",
			Help: "Webhook deliveries by result (applied/replay/ignored/invalid_signature/malformed).",
		},
		[]string{"result"},
	)

	settledAmountTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_settled_amount_total",
			Help: "Total settled amount in minor units, labeled by currency.",
		},
		[]string{"currency"},
	)
)

func IncWebhook(result string) {
	webhooksTotal.WithLabelValues(norm(result)).Inc()
}

func AddSettledAmount(currency string, amount int64) {
	settledAmountTotal.WithLabelValues(norm(currency)).Add(float64(amount))
}
