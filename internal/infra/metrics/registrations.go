package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		registrationsTotal,
		sequenceAllocations,
	)
}

var (
	registrationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registrations_total",
			Help: "Registrations admitted, labeled by role.",
		},
		[]string{"role"},
	)

	sequenceAllocations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sequence_allocations_total",
			Help: "Sequence numbers issued, labeled by scope depth.",
		},
		[]string{"depth"}, // 'state', 'district', 'club'
	)
)

func IncRegistration(role string) {
	registrationsTotal.WithLabelValues(norm(role)).Inc()
}

func IncSequenceAllocation(depth string) {
	sequenceAllocations.WithLabelValues(norm(depth)).Inc()
}
