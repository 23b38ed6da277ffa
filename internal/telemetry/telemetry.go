// Package telemetry provides OpenTelemetry instrumentation for the claim-ranker service.
// It exports Prometheus metrics and provides tracing capabilities.
package telemetry

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "claim-ranker"

// Metrics holds all claim-ranker Prometheus metrics
type Metrics struct {
	// Pipeline metrics
	ClaimsProcessed  *prometheus.CounterVec
	ClaimsFailed     *prometheus.CounterVec
	PipelineDuration *prometheus.HistogramVec
	StageDuration    *prometheus.HistogramVec
	SentimentRetries prometheus.Counter

	// Classification metrics
	CategoryTotal        *prometheus.CounterVec
	PriorityTotal        *prometheus.CounterVec
	ClassifierCacheTotal *prometheus.CounterVec

	// Rule engine metrics
	RuleMatchDuration prometheus.Histogram
	RulesEvaluated    prometheus.Counter
	RulesMatched      prometheus.Counter

	// Provider metrics
	ProviderCalls   *prometheus.CounterVec
	ProviderLatency *prometheus.HistogramVec
}

// Provider wraps telemetry providers
type Provider struct {
	Tracer  trace.Tracer
	Metrics *Metrics
}

// NewProvider initializes telemetry with Prometheus metrics
func NewProvider() *Provider {
	metrics := initMetrics()
	tracer := otel.Tracer(serviceName)

	return &Provider{
		Tracer:  tracer,
		Metrics: metrics,
	}
}

// Handler returns the Prometheus HTTP handler for /metrics endpoint
func (p *Provider) Handler() http.Handler {
	return promhttp.Handler()
}

func initMetrics() *Metrics {
	m := &Metrics{}
	initPipelineMetrics(m)
	initClassificationMetrics(m)
	initRuleEngineMetrics(m)
	initProviderMetrics(m)
	return m
}

func initPipelineMetrics(m *Metrics) {
	m.ClaimsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "claimranker_claims_processed_total",
		Help: "Total claims that completed the pipeline, by terminal status",
	}, []string{"status"})

	m.ClaimsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "claimranker_claims_failed_total",
		Help: "Total claims that failed processing, by fail reason",
	}, []string{"reason"})

	m.PipelineDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "claimranker_pipeline_duration_seconds",
		Help:    "End-to-end time to process a single claim",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
	}, []string{"status"})

	m.StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "claimranker_stage_duration_seconds",
		Help:    "Time spent in each pipeline stage",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
	}, []string{"stage"})

	m.SentimentRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "claimranker_sentiment_retries_total",
		Help: "Total sentiment scorer retries",
	})
}

func initClassificationMetrics(m *Metrics) {
	m.CategoryTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "claimranker_category_total",
		Help: "Total claims per assigned category and decision source (local, remote, fallback)",
	}, []string{"category", "source"})

	m.PriorityTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "claimranker_priority_total",
		Help: "Total claims per assigned priority level",
	}, []string{"priority"})

	m.ClassifierCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "claimranker_classifier_cache_total",
		Help: "Remote classifier cache lookups by result (hit, miss)",
	}, []string{"result"})
}

func initRuleEngineMetrics(m *Metrics) {
	m.RuleMatchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "claimranker_rule_match_duration_seconds",
		Help:    "Time spent in rule matching (Aho-Corasick)",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1},
	})

	m.RulesEvaluated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "claimranker_rules_evaluated_total",
		Help: "Total rule evaluations",
	})

	m.RulesMatched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "claimranker_rules_matched_total",
		Help: "Total rules that matched",
	})
}

func initProviderMetrics(m *Metrics) {
	m.ProviderCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "claimranker_provider_calls_total",
		Help: "Total outbound provider calls by provider and outcome",
	}, []string{"provider", "outcome"})

	m.ProviderLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "claimranker_provider_latency_seconds",
		Help:    "Latency of outbound provider calls",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
	}, []string{"provider"})
}

// RecordClaimProcessed records a claim reaching a terminal status
func (p *Provider) RecordClaimProcessed(ctx context.Context, status string, duration time.Duration) {
	p.Metrics.ClaimsProcessed.WithLabelValues(status).Inc()
	p.Metrics.PipelineDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordClaimFailure records a failed claim with its fail reason
func (p *Provider) RecordClaimFailure(ctx context.Context, reason string) {
	p.Metrics.ClaimsFailed.WithLabelValues(reason).Inc()
}

// RecordStageDuration records the time spent in a single pipeline stage
func (p *Provider) RecordStageDuration(ctx context.Context, stage string, duration time.Duration) {
	p.Metrics.StageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// IncrementSentimentRetry increments the sentiment retry counter
func (p *Provider) IncrementSentimentRetry() {
	p.Metrics.SentimentRetries.Inc()
}

// RecordCategory increments the category counter for an assigned category.
func (p *Provider) RecordCategory(ctx context.Context, category, source string) {
	label := category
	if label == "" {
		label = "uncategorized"
	}
	p.Metrics.CategoryTotal.WithLabelValues(label, source).Inc()
}

// RecordPriority records an assigned priority level
func (p *Provider) RecordPriority(priority int) {
	p.Metrics.PriorityTotal.WithLabelValues(strconv.Itoa(priority)).Inc()
}

// RecordClassifierCacheLookup records a remote classifier cache lookup
func (p *Provider) RecordClassifierCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	p.Metrics.ClassifierCacheTotal.WithLabelValues(result).Inc()
}

// RecordRuleMatch records rule engine metrics
func (p *Provider) RecordRuleMatch(ctx context.Context, duration time.Duration, rulesEvaluated, rulesMatched int) {
	p.Metrics.RuleMatchDuration.Observe(duration.Seconds())
	p.Metrics.RulesEvaluated.Add(float64(rulesEvaluated))
	p.Metrics.RulesMatched.Add(float64(rulesMatched))
}

// RecordProviderCall records an outbound provider call
func (p *Provider) RecordProviderCall(ctx context.Context, provider string, success bool, duration time.Duration) {
	outcome := "error"
	if success {
		outcome = "success"
	}
	p.Metrics.ProviderCalls.WithLabelValues(provider, outcome).Inc()
	p.Metrics.ProviderLatency.WithLabelValues(provider).Observe(duration.Seconds())
}

// StartSpan starts a new trace span.
// The caller is responsible for ending the span with span.End().
//
//nolint:spancheck // Caller is responsible for ending the span
func (p *Provider) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	ctx, span := p.Tracer.Start(ctx, name, trace.WithAttributes(attrs...))
	return ctx, span
}
