package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal     *prometheus.CounterVec
	HTTPRequestDuration   *prometheus.HistogramVec
	HTTPResponseSize      *prometheus.HistogramVec
	HTTPActiveConnections *prometheus.GaugeVec

	RateLimitExceededTotal *prometheus.CounterVec

	// Guard pipelines
	WebhookEventsTotal   *prometheus.CounterVec
	AvatarsSetTotal      *prometheus.CounterVec
	MembersBlockedTotal  prometheus.Counter
	MessagesFlaggedTotal *prometheus.CounterVec
	AlertsSentTotal      *prometheus.CounterVec

	// Vendor APIs
	ExternalCallsTotal   *prometheus.CounterVec
	ExternalCallDuration *prometheus.HistogramVec
	EmailCheckCacheTotal *prometheus.CounterVec
}

var (
	instance *Metrics
	once     sync.Once
)

// Initialize creates and registers all Prometheus metrics
func Initialize() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			HTTPRequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "http_requests_total",
					Help: "Total number of HTTP requests",
				},
				[]string{"method", "path", "status"},
			),
			HTTPRequestDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "http_request_duration_seconds",
					Help:    "HTTP request latency in seconds",
					Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
				},
				[]string{"method", "path", "status"},
			),
			HTTPResponseSize: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "http_response_size_bytes",
					Help:    "HTTP response size in bytes",
					Buckets: prometheus.ExponentialBuckets(100, 10, 6),
				},
				[]string{"method", "path", "status"},
			),
			HTTPActiveConnections: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Name: "http_active_connections",
					Help: "Number of currently active HTTP connections",
				},
				[]string{"method", "path"},
			),
			RateLimitExceededTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "rate_limit_exceeded_total",
					Help: "Total number of rate limit violations",
				},
				[]string{"endpoint", "method"},
			),

			WebhookEventsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "memberguard_webhook_events_total",
					Help: "Webhook events received, by event type and outcome",
				},
				[]string{"event_type", "outcome"},
			),
			AvatarsSetTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "memberguard_avatars_set_total",
					Help: "Member profile photos set from Gravatar",
				},
				[]string{"source"},
			),
			MembersBlockedTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "memberguard_members_blocked_total",
					Help: "Members blocked for using a disposable email domain",
				},
			),
			MessagesFlaggedTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "memberguard_messages_flagged_total",
					Help: "Inbox messages flagged by moderation",
				},
				[]string{"provider"},
			),
			AlertsSentTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "memberguard_alerts_sent_total",
					Help: "Fake member alerts by provider and result",
				},
				[]string{"provider", "result"},
			),

			ExternalCallsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "external_api_calls_total",
					Help: "Outbound API calls by service and status code",
				},
				[]string{"service", "status"},
			),
			ExternalCallDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "external_api_call_duration_seconds",
					Help:    "Outbound API call latency in seconds",
					Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
				},
				[]string{"service"},
			),
			EmailCheckCacheTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "emailcheck_cache_total",
					Help: "Email verdict cache lookups by result",
				},
				[]string{"result"},
			),
		}
	})
	return instance
}

// Get returns the global metrics instance
func Get() *Metrics {
	return Initialize()
}

// Handler serves the default registry for scraping
func Handler() http.Handler {
	Initialize()
	return promhttp.Handler()
}
