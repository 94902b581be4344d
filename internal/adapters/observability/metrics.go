package observability

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const namespace = "reviewbot"

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace, Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	ExternalRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "external_requests_total", Help: "Outbound requests."},
		[]string{"service", "endpoint", "status"},
	)
	ExternalLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace, Name: "external_request_duration_seconds",
			Help:    "Outbound request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "endpoint"},
	)
	CacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "cache_events_total", Help: "Cache hits/misses/sets/dels."},
		[]string{"cache", "event"}, // event: hit|miss|set|del
	)
	Transitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "conversation_transitions_total", Help: "Dialogue step transitions."},
		[]string{"from", "to"},
	)
	ReviewsSaved = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "reviews_saved_total", Help: "Completed reviews by persistence result."},
		[]string{"result"}, // ok|error
	)
	WebhookDuplicates = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: namespace, Name: "webhook_duplicates_total", Help: "Redelivered webhook messages that were skipped."},
	)
	NotifyFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "notify_failures_total", Help: "Outbound messages the provider did not accept."},
		[]string{"error"}, // Go type of the send error
	)
)

// Serve builds a dedicated metrics listener for reg. Empty addr disables it
// and returns nil; the caller owns ListenAndServe and Shutdown.
func Serve(addr string, reg *prometheus.Registry) *http.Server {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler(reg))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.Info().Str("addr", addr).Msg("metrics server configured")
	return srv
}

// InitRegistry registers every collector. active reports the number of
// conversations in progress when scraped; it may be nil.
func InitRegistry(active func() int) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(HTTPRequests, HTTPLatency, ExternalRequests, ExternalLatency, CacheEvents,
		Transitions, ReviewsSaved, WebhookDuplicates, NotifyFailures)
	if active != nil {
		reg.MustRegister(prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{Namespace: namespace, Name: "conversations_active", Help: "Senders with a conversation in progress."},
			func() float64 { return float64(active()) },
		))
	}
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveExternal(service, endpoint string, status int, dur time.Duration) {
	ExternalRequests.WithLabelValues(service, endpoint, strconv.Itoa(status)).Inc()
	ExternalLatency.WithLabelValues(service, endpoint).Observe(dur.Seconds())
}

func ObserveCache(cache, event string) { // event: hit|miss|set|del
	CacheEvents.WithLabelValues(cache, event).Inc()
}

func ObserveTransition(from, to string) {
	Transitions.WithLabelValues(from, to).Inc()
}

func ObserveReviewSaved(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	ReviewsSaved.WithLabelValues(result).Inc()
}

func ObserveNotifyFailure(err error) {
	NotifyFailures.WithLabelValues(LabelErr(err)).Inc()
}

func LabelErr(err error) string {
	if err == nil {
		return "none"
	}
	return fmt.Sprintf("%T", err)
}
