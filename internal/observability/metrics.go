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
			Name: "social_http_requests_total",
			Help: "Total number of HTTP requests processed by the social service.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "social_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	wsActiveConnections = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "social_ws_active_connections",
			Help: "Number of active websocket connections.",
		},
		[]string{"kind"},
	)
	wsEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "social_ws_events_total",
			Help: "Total number of websocket events.",
		},
		[]string{"kind", "event"},
	)
	liveSubscriptionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "social_live_subscriptions_active",
			Help: "Number of active Firestore snapshot subscriptions.",
		},
	)
	// NotificationsCreated counts persisted notifications by type.
	NotificationsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "social_notifications_created_total",
			Help: "Total number of notification documents created.",
		},
		[]string{"type"},
	)
	// PushSendFailures counts push deliveries that did not go through.
	PushSendFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "social_push_send_failures_total",
			Help: "Total number of failed push notification sends.",
		},
	)
	amqpPublishErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "social_amqp_publish_errors_total",
			Help: "Total number of AMQP publish errors.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		wsActiveConnections,
		wsEventsTotal,
		liveSubscriptionsActive,
		NotificationsCreated,
		PushSendFailures,
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

func IncWSActive(kind string) {
	wsActiveConnections.WithLabelValues(kind).Inc()
}

func DecWSActive(kind string) {
	wsActiveConnections.WithLabelValues(kind).Dec()
}

func IncWSEvent(kind, event string) {
	wsEventsTotal.WithLabelValues(kind, event).Inc()
}

func IncLiveSubscriptions() {
	liveSubscriptionsActive.Inc()
}

func DecLiveSubscriptions() {
	liveSubscriptionsActive.Dec()
}

func IncAMQPPublishError() {
	amqpPublishErrorsTotal.Inc()
}
