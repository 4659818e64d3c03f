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
			Name: "comms_http_requests_total",
			Help: "Total number of HTTP requests processed by the communication service.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "comms_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	roomsCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "comms_rooms_created_total",
			Help: "Total number of chat rooms created.",
		},
	)
	messagesAppendedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "comms_messages_appended_total",
			Help: "Total number of messages appended to room histories.",
		},
	)
	notificationsDeliveredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "comms_notifications_delivered_total",
			Help: "Total number of notifications delivered by the fan-out.",
		},
	)
	notificationFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "comms_notification_failures_total",
			Help: "Total number of per-recipient notification delivery failures.",
		},
	)
	wsActiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "comms_ws_active_connections",
			Help: "Number of active websocket connections.",
		},
	)
	wsEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "comms_ws_events_total",
			Help: "Total number of websocket events.",
		},
		[]string{"event"},
	)
	amqpPublishErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "comms_amqp_publish_errors_total",
			Help: "Total number of AMQP publish errors.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		roomsCreatedTotal,
		messagesAppendedTotal,
		notificationsDeliveredTotal,
		notificationFailuresTotal,
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

func IncRoomCreated() {
	roomsCreatedTotal.Inc()
}

func IncMessageAppended() {
	messagesAppendedTotal.Inc()
}

func IncNotificationDelivered() {
	notificationsDeliveredTotal.Inc()
}

func IncNotificationFailure() {
	notificationFailuresTotal.Inc()
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
