package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grwcomm_http_requests_total",
			Help: "Total number of HTTP requests processed by the messaging service.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "grwcomm_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	messagesSentTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grwcomm_messages_sent_total",
			Help: "Total messages stored, by send path.",
		},
		[]string{"path"},
	)
	bookingsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grwcomm_slot_bookings_total",
			Help: "Slot booking attempts, by outcome.",
		},
		[]string{"result"},
	)
	creditsUsedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "grwcomm_credits_used_total",
			Help: "Credits consumed by successful bookings.",
		},
	)
	creditsGrantedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "grwcomm_credits_granted_total",
			Help: "Credits granted by admins or bonuses.",
		},
	)
	reportsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "grwcomm_reports_total",
			Help: "User reports filed.",
		},
	)
	wsActiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "grwcomm_ws_active_connections",
			Help: "Number of active websocket connections.",
		},
	)
	wsEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grwcomm_ws_events_total",
			Help: "Total number of websocket events.",
		},
		[]string{"event"},
	)
	amqpPublishErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "grwcomm_amqp_publish_errors_total",
			Help: "Total number of AMQP publish errors.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		messagesSentTotal,
		bookingsTotal,
		creditsUsedTotal,
		creditsGrantedTotal,
		reportsTotal,
		wsActiveConnections,
		wsEventsTotal,
		amqpPublishErrorsTotal,
	)
}

func HTTPMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()

		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

// IncMessageSent records a stored message; path is "booking" or "reply".
func IncMessageSent(path string) {
	messagesSentTotal.WithLabelValues(path).Inc()
}

// IncBooking records a booking attempt outcome ("booked" or a deny reason).
func IncBooking(result string) {
	bookingsTotal.WithLabelValues(result).Inc()
}

func IncCreditUsed() {
	creditsUsedTotal.Inc()
}

func AddCreditsGranted(amount int) {
	creditsGrantedTotal.Add(float64(amount))
}

func IncReport() {
	reportsTotal.Inc()
}

func IncWSActive() {
	wsActiveConnections.Inc()
}

func DecWSActive() {
	wsActiveConnections.Dec()
}

func IncWSEvent(event string) {
	wsEventsTotal.WithLabelValues(event).Inc()
}

func IncAMQPPublishError() {
	amqpPublishErrorsTotal.Inc()
}
