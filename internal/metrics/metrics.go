package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "labslot_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "labslot_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	ReservationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "labslot_reservations_total",
			Help: "Total number of reservation groups created",
		},
		[]string{"origin"},
	)

	ReservationConflictsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "labslot_reservation_conflicts_total",
			Help: "Total number of reservation attempts rejected as conflicts",
		},
		[]string{"kind"},
	)

	ReservationCancellationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "labslot_reservation_cancellations_total",
			Help: "Total number of reservation group cancellations",
		},
	)

	DebounceRejectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "labslot_debounce_rejections_total",
			Help: "Total number of duplicate submissions rejected by the debounce guard",
		},
	)

	ErrorReportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "labslot_error_reports_total",
			Help: "Total number of errors handed to the error reporter",
		},
		[]string{"severity"},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordReservation(origin string) {
	ReservationsTotal.WithLabelValues(origin).Inc()
}

func RecordConflict(kind string) {
	ReservationConflictsTotal.WithLabelValues(kind).Inc()
}

func RecordCancellation() {
	ReservationCancellationsTotal.Inc()
}

func RecordDebounceRejection() {
	DebounceRejectionsTotal.Inc()
}

func RecordErrorReport(severity string) {
	ErrorReportsTotal.WithLabelValues(severity).Inc()
}
