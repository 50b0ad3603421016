package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vroomgo",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route.",
		},
		[]string{"route"},
	)

	bookingsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "vroomgo",
			Name:      "bookings_created_total",
			Help:      "Bookings successfully created.",
		},
	)

	bookingsCancelled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "vroomgo",
			Name:      "bookings_cancelled_total",
			Help:      "Bookings cancelled by users or admins.",
		},
	)

	bookingsRescheduled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "vroomgo",
			Name:      "bookings_rescheduled_total",
			Help:      "Bookings moved to a new window.",
		},
	)

	bookingConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "vroomgo",
			Name:      "booking_conflicts_total",
			Help:      "Create or reschedule attempts rejected for an overlapping window.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, bookingsCreated, bookingsCancelled, bookingsRescheduled, bookingConflicts)
	})
}

func IncHTTP(route string)   { httpRequests.WithLabelValues(route).Inc() }
func IncBookingCreated()     { bookingsCreated.Inc() }
func IncBookingCancelled()   { bookingsCancelled.Inc() }
func IncBookingRescheduled() { bookingsRescheduled.Inc() }
func IncBookingConflict()    { bookingConflicts.Inc() }
