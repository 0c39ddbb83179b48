// Package metrics instruments intents and persistence with Prometheus.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors. A nil *Metrics records nothing.
type Metrics struct {
	intents     *prometheus.CounterVec
	persistence *prometheus.HistogramVec
	failures    *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		intents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mvi",
			Name:      "intents_total",
			Help:      "Intents accepted by a store.",
		}, []string{"store", "intent"}),
		persistence: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "mvi",
			Name:      "persistence_duration_seconds",
			Help:      "Latency of persistence collaborator operations.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"op"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mvi",
			Name:      "persistence_failures_total",
			Help:      "Persistence failures that were logged and swallowed.",
		}, []string{"op"}),
	}
	reg.MustRegister(m.intents, m.persistence, m.failures)
	return m
}

// Intent counts one accepted intent.
func (m *Metrics) Intent(store, name string) {
	if m == nil {
		return
	}
	m.intents.WithLabelValues(store, name).Inc()
}

// Persistence observes one collaborator operation that started at start.
func (m *Metrics) Persistence(op string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.persistence.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		m.failures.WithLabelValues(op).Inc()
	}
}

// Serve exposes /metrics on addr until ctx is done.
func Serve(ctx context.Context, addr string, gatherer prometheus.Gatherer, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	go func() {
		logger.Info("serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", "error", err)
		}
	}()
}
