// Package metrics exposes Prometheus instrumentation for the device registry
// service: a standalone /metrics listener and the registration lifecycle
// counters recorded by the transaction controller.
package metrics

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "device_registry"

// MetricsServer serves the Prometheus scrape endpoint on its own listener,
// separate from the API server.
type MetricsServer struct {
	srv *http.Server
}

// New creates a metrics server for the given service name and listen address.
func New(name, listenAddr string) (*MetricsServer, error) {
	up := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: strings.ReplaceAll(name, "-", "_") + "_up",
		Help: "Set to 1 while the service is running.",
	})
	up.Set(1)
	// Tests build multiple servers; tolerate the gauge already existing.
	if err := prometheus.Register(up); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
			return nil, err
		}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	return &MetricsServer{
		srv: &http.Server{Addr: listenAddr, Handler: mux},
	}, nil
}

// ListenAndServe blocks serving the scrape endpoint.
func (s *MetricsServer) ListenAndServe() error {
	return s.srv.ListenAndServe()
}

// Shutdown gracefully stops the scrape endpoint.
func (s *MetricsServer) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// RegistrationMetrics records registration attempt outcomes and confirmation
// latency.
type RegistrationMetrics struct {
	attempts            *prometheus.CounterVec
	confirmationLatency prometheus.Histogram
}

var (
	registrationOnce sync.Once
	registrationReg  *RegistrationMetrics
)

// Registration returns the lazily-initialised registration metrics.
func Registration() *RegistrationMetrics {
	registrationOnce.Do(func() {
		registrationReg = &RegistrationMetrics{
			attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "registration",
				Name:      "attempts_total",
				Help:      "Registration attempts segmented by terminal outcome.",
			}, []string{"outcome"}),
			confirmationLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "registration",
				Name:      "confirmation_duration_seconds",
				Help:      "Time from submission to chain confirmation.",
				Buckets:   prometheus.DefBuckets,
			}),
		}
		prometheus.MustRegister(
			registrationReg.attempts,
			registrationReg.confirmationLatency,
		)
	})
	return registrationReg
}

// ObserveOutcome counts a terminal attempt outcome ("confirmed" or "failed").
func (m *RegistrationMetrics) ObserveOutcome(outcome string) {
	if m == nil {
		return
	}
	m.attempts.WithLabelValues(outcome).Inc()
}

// ObserveConfirmation records the submission-to-confirmation latency.
func (m *RegistrationMetrics) ObserveConfirmation(d time.Duration) {
	if m == nil {
		return
	}
	m.confirmationLatency.Observe(d.Seconds())
}
