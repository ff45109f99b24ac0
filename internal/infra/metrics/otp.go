package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		otpIssuedTotal,
		otpVerificationsTotal,
		otpDeliveryFailures,
	)
}

var (
	otpIssuedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "otp_issued_total",
			Help: "One-time codes issued, labeled by purpose.",
		},
		[]string{"purpose"},
	)

	otpVerificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "otp_verifications_total",
			Help: "Verification attempts by result (ok/mismatch).",
		},
		[]string{"result"},
	)

	otpDeliveryFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "otp_delivery_failures_total",
			Help: "Failed code deliveries, labeled by sender adapter.",
		},
		[]string{"sender"},
	)
)

func IncOTPIssued(purpose string) {
	otpIssuedTotal.WithLabelValues(norm(purpose)).Inc()
}

func IncOTPVerification(result string) {
	otpVerificationsTotal.WithLabelValues(norm(result)).Inc()
}

func IncOTPDeliveryFailure(sender string) {
	otpDeliveryFailures.WithLabelValues(norm(sender)).Inc()
}
