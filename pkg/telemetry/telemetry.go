// Package telemetry exposes prometheus metrics for the messaging engine
// and an HTTP middleware recording request timing. Metrics are served on
// /metrics by the app wiring.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// MessagesSent counts durable message inserts.
	MessagesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "socialsd_messages_sent_total",
		Help: "Messages persisted and published.",
	})

	// NotificationsEmitted counts notification inserts by type.
	NotificationsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialsd_notifications_emitted_total",
		Help: "Notifications persisted and pushed, by type.",
	}, []string{"type"})

	// NotificationEmitFailures counts swallowed emit errors. Emission is
	// best-effort, so failures surface here and in logs only.
	NotificationEmitFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "socialsd_notification_emit_failures_total",
		Help: "Notification emits that failed and were dropped.",
	})

	// ReactionsToggled counts toggles by resulting state.
	ReactionsToggled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialsd_reactions_toggled_total",
		Help: "Reaction toggles, by resulting state (liked/unliked).",
	}, []string{"state"})

	// LiveSubscribers tracks currently registered live subscriptions.
	LiveSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "socialsd_live_subscribers",
		Help: "Active live-channel subscriptions.",
	})

	// NotificationsPurged counts read notifications removed by retention.
	NotificationsPurged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "socialsd_notifications_purged_total",
		Help: "Read notifications deleted by the retention sweeper.",
	})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "socialsd_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "status"})
)

// Handler returns the /metrics endpoint handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware records request duration and status for every request.
// Websocket upgrades bypass recording: the wrapped writer would hide the
// http.Hijacker the upgrader needs.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Upgrade") == "websocket" {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		requestDuration.WithLabelValues(r.Method, strconv.Itoa(rec.status)).Observe(time.Since(start).Seconds())
	})
}
