package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "balneario",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint and status code.",
		},
		[]string{"endpoint", "status"},
	)

	reservationsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "balneario",
			Name:      "reservations_created_total",
			Help:      "Reservation groups created by service type.",
		},
		[]string{"service"},
	)

	conflictsRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "balneario",
			Name:      "reservation_conflicts_total",
			Help:      "Bookings rejected by the availability gate.",
		},
		[]string{"service", "reason"},
	)

	paymentsRecorded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "balneario",
			Name:      "payments_recorded_total",
			Help:      "Payment ledger entries by method.",
		},
		[]string{"method"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, reservationsCreated, conflictsRejected, paymentsRecorded)
	})
}

// IncHTTP increments the request counter for an endpoint/status pair.
func IncHTTP(endpoint, status string) {
	httpRequests.WithLabelValues(endpoint, status).Inc()
}

// IncReservationCreated counts an accepted booking.
func IncReservationCreated(service string) {
	reservationsCreated.WithLabelValues(service).Inc()
}

// IncConflictRejected counts a booking turned away by the availability gate.
func IncConflictRejected(service, reason string) {
	conflictsRejected.WithLabelValues(service, reason).Inc()
}

// IncPaymentRecorded counts a ledger entry.
func IncPaymentRecorded(method string) {
	paymentsRecorded.WithLabelValues(method).Inc()
}
