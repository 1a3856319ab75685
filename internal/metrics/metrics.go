// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package metrics exposes Prometheus instrumentation for the
// fingerprinting pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"grimm.is/glasswing/internal/logging"
)

// Metrics holds the pipeline's Prometheus collectors on a dedicated
// registry.
type Metrics struct {
	registry *prometheus.Registry

	PacketsSeen         prometheus.Counter
	FlowsFingerprinted  prometheus.Counter
	ExactMatches        prometheus.Counter
	ApproxMatches       prometheus.Counter
	UnknownFingerprints prometheus.Counter
}

// SizeFunc reports a gauge value on scrape.
type SizeFunc func() float64

// New creates the collector set. databaseSize and cache hit/miss
// functions are sampled lazily at scrape time; any of them may be nil.
func New(databaseSize, memoHits, memoMisses SizeFunc) *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		PacketsSeen: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "glasswing_packets_seen_total",
			Help: "Packets read from the capture source.",
		}),
		FlowsFingerprinted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "glasswing_flows_fingerprinted_total",
			Help: "Flows for which a fingerprint record was emitted.",
		}),
		ExactMatches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "glasswing_fingerprint_exact_matches_total",
			Help: "Fingerprints resolved by exact database lookup.",
		}),
		ApproxMatches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "glasswing_fingerprint_approx_matches_total",
			Help: "Fingerprints resolved through approximate matching.",
		}),
		UnknownFingerprints: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "glasswing_fingerprint_unknown_total",
			Help: "Novel fingerprints with no plausible approximate match.",
		}),
	}

	registry.MustRegister(
		m.PacketsSeen,
		m.FlowsFingerprinted,
		m.ExactMatches,
		m.ApproxMatches,
		m.UnknownFingerprints,
	)

	if databaseSize != nil {
		registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "glasswing_database_records",
			Help: "Fingerprint records currently in the database.",
		}, databaseSize))
	}
	if memoHits != nil {
		registry.MustRegister(prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "glasswing_identify_cache_hits_total",
			Help: "Identification memo cache hits.",
		}, memoHits))
	}
	if memoMisses != nil {
		registry.MustRegister(prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "glasswing_identify_cache_misses_total",
			Help: "Identification memo cache misses.",
		}, memoMisses))
	}

	return m
}

// Serve exposes the registry on addr at /metrics until the process
// exits. Failures are logged, not fatal: metrics are advisory.
func (m *Metrics) Serve(addr string, logger *logging.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("Metrics endpoint listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Warn("Metrics endpoint failed", "addr", addr, "error", err)
		}
	}()
}
