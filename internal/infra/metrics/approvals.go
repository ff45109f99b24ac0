package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(approvalsTotal) }

var approvalsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "approvals_total",
		Help: "Approval decisions, labeled by outcome (approved/rejected).",
	},
	[]string{"decision"},
)

func IncApproval(decision string) {
	approvalsTotal.WithLabelValues(norm(decision)).Inc()
}
