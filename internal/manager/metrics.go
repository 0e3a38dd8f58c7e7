package manager

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	engineCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ftserve",
			Subsystem: "engine",
			Name:      "calls_total",
			Help:      "Total number of engine operations",
		},
		[]string{"op", "outcome"},
	)

	engineCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ftserve",
			Subsystem: "engine",
			Name:      "call_duration_seconds",
			Help:      "Duration of engine operations in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"op"},
	)

	modelLoaded = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "ftserve",
			Subsystem: "model",
			Name:      "loaded",
			Help:      "1 while a model is loaded",
		},
	)
)

func init() {
	prometheus.MustRegister(engineCallsTotal, engineCallDuration, modelLoaded)
}

// observe runs fn and records its outcome and duration under op.
func (m *Manager) observe(op string, fn func() error) error {
	start := time.Now()
	err := fn()
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	engineCallsTotal.WithLabelValues(op, outcome).Inc()
	engineCallDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	return err
}
