package telemetry

import (
	"context"
	"log"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds all custom metrics for the service
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal metric.Int64Counter
	HTTPDurationMs    metric.Float64Histogram

	// Store metrics
	MutationsTotal      metric.Int64Counter
	MirrorFallbackTotal metric.Int64Counter
	BreakerTransitions  metric.Int64Counter
	ReloadDurationMs    metric.Float64Histogram

	// Auth metrics
	AuthFailuresTotal       metric.Int64Counter
	PermissionCheckDuration metric.Float64Histogram
}

// InitMetrics initializes all custom metrics
func InitMetrics() (*Metrics, error) {
	meter := otel.Meter("github.com/vitacasa-care/community-service")

	httpRequestsTotal, err := meter.Int64Counter(
		"http_server_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	httpDurationMs, err := meter.Float64Histogram(
		"http_server_duration_milliseconds",
		metric.WithDescription("HTTP request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	mutationsTotal, err := meter.Int64Counter(
		"store_mutations_total",
		metric.WithDescription("Total number of store mutations by collection and outcome"),
		metric.WithUnit("{mutation}"),
	)
	if err != nil {
		return nil, err
	}

	mirrorFallbackTotal, err := meter.Int64Counter(
		"store_mirror_fallback_writes_total",
		metric.WithDescription("Writes that fell back to the local mirror"),
		metric.WithUnit("{write}"),
	)
	if err != nil {
		return nil, err
	}

	breakerTransitions, err := meter.Int64Counter(
		"store_breaker_transitions_total",
		metric.WithDescription("Circuit breaker state transitions by collection"),
		metric.WithUnit("{transition}"),
	)
	if err != nil {
		return nil, err
	}

	reloadDurationMs, err := meter.Float64Histogram(
		"store_reload_duration_milliseconds",
		metric.WithDescription("Full clinic reload duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	authFailuresTotal, err := meter.Int64Counter(
		"auth_failures_total",
		metric.WithDescription("Total number of authentication failures"),
		metric.WithUnit("{failure}"),
	)
	if err != nil {
		return nil, err
	}

	permissionCheckDuration, err := meter.Float64Histogram(
		"permission_check_duration_ms",
		metric.WithDescription("Permission check duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	log.Println("✓ Custom metrics initialized")

	return &Metrics{
		HTTPRequestsTotal:       httpRequestsTotal,
		HTTPDurationMs:          httpDurationMs,
		MutationsTotal:          mutationsTotal,
		MirrorFallbackTotal:     mirrorFallbackTotal,
		BreakerTransitions:      breakerTransitions,
		ReloadDurationMs:        reloadDurationMs,
		AuthFailuresTotal:       authFailuresTotal,
		PermissionCheckDuration: permissionCheckDuration,
	}, nil
}

// RecordHTTPRequest records an HTTP request metric
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, route string, statusCode int, durationMs float64) {
	attrs := []attribute.KeyValue{
		attribute.String("http_method", method),
		attribute.String("http_route", route),
		attribute.Int("http_status_code", statusCode),
	}

	m.HTTPRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.HTTPDurationMs.Record(ctx, durationMs, metric.WithAttributes(attrs...))
}

// RecordMutation records a store mutation outcome ("remote" or "mirror")
func (m *Metrics) RecordMutation(ctx context.Context, table, action, outcome string) {
	m.MutationsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("collection", table),
		attribute.String("action", action),
		attribute.String("outcome", outcome),
	))
}

// RecordMirrorFallback records a write that went to the local mirror only
func (m *Metrics) RecordMirrorFallback(ctx context.Context, table string) {
	m.MirrorFallbackTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("collection", table),
	))
}

// RecordBreakerTransition records a circuit breaker state change
func (m *Metrics) RecordBreakerTransition(ctx context.Context, table, state string) {
	m.BreakerTransitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("collection", table),
		attribute.String("state", state),
	))
}

// RecordReload records a full clinic reload duration
func (m *Metrics) RecordReload(ctx context.Context, clinicID string, durationMs float64) {
	m.ReloadDurationMs.Record(ctx, durationMs, metric.WithAttributes(
		attribute.String("clinic_id", clinicID),
	))
}

// RecordAuthFailure records an authentication failure metric
func (m *Metrics) RecordAuthFailure(ctx context.Context, reason string) {
	m.AuthFailuresTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("reason", reason),
	))
}

// RecordPermissionCheck records a permission check duration metric
func (m *Metrics) RecordPermissionCheck(ctx context.Context, permission string, durationMs float64, allowed bool) {
	m.PermissionCheckDuration.Record(ctx, durationMs, metric.WithAttributes(
		attribute.String("permission", permission),
		attribute.Bool("allowed", allowed),
	))
}
