package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "medbook"

var (
	once sync.Once

	appointmentsBooked = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "appointments_booked_total",
			Help:      "Count of appointments booked.",
		},
	)

	appointmentsCancelled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "appointments_cancelled_total",
			Help:      "Count of appointments cancelled.",
		},
	)

	availabilityConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "availability_conflicts_total",
			Help:      "Count of availability writes rejected for overlapping an existing window.",
		},
	)

	slotSearchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "slot_search_duration_seconds",
			Help:      "Latency of open slot searches, store reads included.",
			Buckets:   prometheus.DefBuckets,
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Count of HTTP requests by method, route pattern and status.",
		},
		[]string{"method", "route", "status"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			appointmentsBooked,
			appointmentsCancelled,
			availabilityConflicts,
			slotSearchDuration,
			httpRequests,
		)
	})
}

func IncAppointmentBooked() {
	appointmentsBooked.Inc()
}

func IncAppointmentCancelled() {
	appointmentsCancelled.Inc()
}

func IncAvailabilityConflict() {
	availabilityConflicts.Inc()
}

func ObserveSlotSearch(d time.Duration) {
	slotSearchDuration.Observe(d.Seconds())
}

func IncHTTPRequest(method, route string, status int) {
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}
