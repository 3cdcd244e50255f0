// Package observability exposes Prometheus metrics for ingestion builds and
// query serving, plus an optional scrape endpoint for long-running builds.
package observability

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Metrics holds the Prometheus counters and histograms for the IM database.
type Metrics struct {
	FilesProcessed prometheus.Counter
	FilesSkipped   *prometheus.CounterVec // labels: reason={no_stations,parse_error}
	RowsInserted   prometheus.Counter
	ParseDuration  prometheus.Histogram

	QueryCache    *prometheus.CounterVec // labels: result={hit,miss}
	QueryDuration prometheus.Histogram
}

func newMetrics() *Metrics {
	return &Metrics{
		FilesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "imdb",
			Name:      "files_processed_total",
			Help:      "Source CSV files committed to the store.",
		}),
		FilesSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "imdb",
			Name:      "files_skipped_total",
			Help:      "Source CSV files skipped during ingestion, by reason.",
		}, []string{"reason"}),
		RowsInserted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "imdb",
			Name:      "rows_inserted_total",
			Help:      "Measurement rows written across all value tables.",
		}),
		ParseDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "imdb",
			Name:      "parse_duration_seconds",
			Help:      "Duration of one background CSV parse.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		QueryCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "imdb",
			Name:      "query_cache_total",
			Help:      "Station query cache lookups by result.",
		}, []string{"result"}),
		QueryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "imdb",
			Name:      "query_duration_seconds",
			Help:      "Duration of a full station query including fan-out.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}
}

// NewMetrics registers all metrics with the default registry. Repeated
// calls in one process reuse the collectors already registered, so several
// commands can run back to back sharing the same counters.
func NewMetrics() *Metrics {
	m := newMetrics()
	m.FilesProcessed = register(m.FilesProcessed)
	m.FilesSkipped = register(m.FilesSkipped)
	m.RowsInserted = register(m.RowsInserted)
	m.ParseDuration = register(m.ParseDuration)
	m.QueryCache = register(m.QueryCache)
	m.QueryDuration = register(m.QueryDuration)
	return m
}

// register adds c to the default registry, or hands back the collector an
// earlier call registered under the same descriptor.
func register[C prometheus.Collector](c C) C {
	if err := prometheus.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return are.ExistingCollector.(C)
		}
		panic(err)
	}
	return c
}

// NewMetricsForTesting creates Metrics without touching the default
// registry, so parallel tests cannot collide on registration.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

// Serve exposes /metrics on addr until ctx is cancelled. Intended for long
// builds; errors are logged, not fatal.
func Serve(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zap.L().Warn("metrics server stopped", zap.String("addr", addr), zap.Error(err))
		}
	}()
}
