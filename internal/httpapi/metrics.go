package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

// unmatchedRoute labels requests no route matched, so probing clients cannot
// grow the label set.
const unmatchedRoute = "unmatched"

var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ftserve",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route pattern, method and status code",
		},
		[]string{"route", "method", "code"},
	)

	// Predictions and vector lookups finish in milliseconds; /train and
	// /test run for as long as fastText does.
	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ftserve",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route pattern",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		},
		[]string{"route"},
	)

	inflightRequests = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "ftserve",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "HTTP requests currently being served",
		},
	)

	rejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ftserve",
			Subsystem: "http",
			Name:      "rejections_total",
			Help:      "Requests answered with 429, by reason (train_rate, train)",
		},
		[]string{"reason"},
	)
)

func init() {
	prometheus.MustRegister(requestsTotal, requestDuration, inflightRequests, rejectionsTotal)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// MetricsMiddleware instruments requests for Prometheus. Installed with
// r.Use it sees the chi route pattern only once the request has been routed,
// so the route label is read after the handler returns.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inflightRequests.Inc()
		defer inflightRequests.Dec()

		sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(sr, r)
		route := routeLabel(r)
		requestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(sr.status)).Inc()
		requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

func routeLabel(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return unmatchedRoute
}

// countRejection records a 429 answer.
func countRejection(reason string) {
	if reason == "" {
		reason = "unspecified"
	}
	rejectionsTotal.WithLabelValues(reason).Inc()
}
