// Package metrics holds the Prometheus collectors of the service.
//
// Each App owns its own registry so tests can build several apps in one
// process without duplicate registration panics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	NotificationsSent         *prometheus.CounterVec
	NotificationsFailed       *prometheus.CounterVec
	NotificationsDeadLettered prometheus.Counter
	QueueRejections           prometheus.Counter

	JobRuns *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		NotificationsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notifications_sent_total",
			Help: "Emails handed to the mailer successfully, by kind.",
		}, []string{"kind"}),
		NotificationsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notifications_failed_total",
			Help: "Failed notification deliveries, by kind.",
		}, []string{"kind"}),
		NotificationsDeadLettered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "notifications_dead_lettered_total",
			Help: "Notification intents abandoned after the last attempt.",
		}),
		QueueRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "notification_queue_rejections_total",
			Help: "Notification intents that could not be enqueued.",
		}),
		JobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scheduled_job_runs_total",
			Help: "Scheduled job runs by job name and result.",
		}, []string{"job", "result"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequests,
		m.HTTPRequestDuration,
		m.NotificationsSent,
		m.NotificationsFailed,
		m.NotificationsDeadLettered,
		m.QueueRejections,
		m.JobRuns,
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
