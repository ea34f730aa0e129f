// Package metrics exposes Prometheus instrumentation for the matching
// engine, the taxonomy registry, coverage audits and the HTTP API.
//
// Usage:
//
//	metrics.RecordRank("rank", len(ads), len(report.Skipped), time.Since(start))
//	metrics.RecordReload(err)
//	metrics.SetGraphStats(g.CategoryCount(), g.EdgeCount(), g.LoadedAt())
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Ranking

	RankDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "admatch_rank_duration_seconds",
			Help: "Duration of ranking calls in seconds",
			// Ranking is in-memory; most calls finish well under a millisecond.
			Buckets: []float64{0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
		[]string{"operation"},
	)

	RankCandidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "admatch_rank_candidates",
			Help:    "Number of candidate ads per ranking call",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	SkippedAds = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "admatch_skipped_ads_total",
			Help: "Total number of malformed candidate ads skipped during ranking",
		},
	)

	MatchTiers = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admatch_match_tier_total",
			Help: "Total number of scored ad/category pairs by relevance tier",
		},
		[]string{"tier"},
	)

	// Coverage

	CoverageValidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admatch_coverage_validations_total",
			Help: "Total number of interests checked for inventory coverage",
		},
		[]string{"covered"},
	)

	CoverageAudits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admatch_coverage_audits_total",
			Help: "Total number of coverage audit jobs by final status",
		},
		[]string{"status"},
	)

	// Taxonomy

	TaxonomyReloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admatch_taxonomy_reloads_total",
			Help: "Total number of taxonomy reload attempts by result",
		},
		[]string{"result"},
	)

	TaxonomyCategories = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "admatch_taxonomy_categories",
			Help: "Number of categories in the active taxonomy snapshot",
		},
	)

	TaxonomyEdges = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "admatch_taxonomy_edges",
			Help: "Number of directed edges in the active taxonomy snapshot",
		},
	)

	TaxonomyLoadedAt = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "admatch_taxonomy_loaded_timestamp_seconds",
			Help: "Unix time the active taxonomy snapshot was built",
		},
	)

	// API

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admatch_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "admatch_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
)

// RecordRank records one ranking call.
func RecordRank(operation string, candidates, skipped int, duration time.Duration) {
	RankDuration.WithLabelValues(operation).Observe(duration.Seconds())
	RankCandidates.Observe(float64(candidates))
	if skipped > 0 {
		SkippedAds.Add(float64(skipped))
	}
}

// RecordMatchTier counts one scored pair under its tier name.
func RecordMatchTier(tier string) {
	MatchTiers.WithLabelValues(tier).Inc()
}

// RecordCoverage counts one interest coverage check.
func RecordCoverage(covered bool) {
	CoverageValidations.WithLabelValues(strconv.FormatBool(covered)).Inc()
}

// RecordAudit counts a coverage audit reaching a terminal status.
func RecordAudit(status string) {
	CoverageAudits.WithLabelValues(status).Inc()
}

// RecordReload counts a taxonomy reload attempt.
func RecordReload(err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	TaxonomyReloads.WithLabelValues(result).Inc()
}

// SetGraphStats publishes the shape of the active taxonomy snapshot.
func SetGraphStats(categories, edges int, loadedAt time.Time) {
	TaxonomyCategories.Set(float64(categories))
	TaxonomyEdges.Set(float64(edges))
	TaxonomyLoadedAt.Set(float64(loadedAt.Unix()))
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}
