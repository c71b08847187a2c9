// Package telemetry records service metrics through OpenTelemetry.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/terraincognita07/medtrack"

// Metrics holds every instrument the service records.
type Metrics struct {
	httpRequestsTotal  metric.Int64Counter
	httpDurationMs     metric.Float64Histogram
	intakesTotal       metric.Int64Counter
	photoFailuresTotal metric.Int64Counter
	summaryDurationMs  metric.Float64Histogram
	authFailuresTotal  metric.Int64Counter
	activeStreams      metric.Int64UpDownCounter
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	httpRequestsTotal, err := meter.Int64Counter(
		"medtrack_http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("http requests counter: %w", err)
	}

	httpDurationMs, err := meter.Float64Histogram(
		"medtrack_http_duration_milliseconds",
		metric.WithDescription("HTTP request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("http duration histogram: %w", err)
	}

	intakesTotal, err := meter.Int64Counter(
		"medtrack_intakes_total",
		metric.WithDescription("Intake writes by action"),
		metric.WithUnit("{intake}"),
	)
	if err != nil {
		return nil, fmt.Errorf("intakes counter: %w", err)
	}

	photoFailuresTotal, err := meter.Int64Counter(
		"medtrack_photo_upload_failures_total",
		metric.WithDescription("Proof photo uploads that could not be stored"),
		metric.WithUnit("{failure}"),
	)
	if err != nil {
		return nil, fmt.Errorf("photo failures counter: %w", err)
	}

	summaryDurationMs, err := meter.Float64Histogram(
		"medtrack_summary_duration_milliseconds",
		metric.WithDescription("Time spent loading records and computing a dashboard"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("summary duration histogram: %w", err)
	}

	authFailuresTotal, err := meter.Int64Counter(
		"medtrack_auth_failures_total",
		metric.WithDescription("Rejected login attempts"),
		metric.WithUnit("{failure}"),
	)
	if err != nil {
		return nil, fmt.Errorf("auth failures counter: %w", err)
	}

	activeStreams, err := meter.Int64UpDownCounter(
		"medtrack_event_streams_active",
		metric.WithDescription("Open dashboard event streams"),
		metric.WithUnit("{stream}"),
	)
	if err != nil {
		return nil, fmt.Errorf("event streams counter: %w", err)
	}

	return &Metrics{
		httpRequestsTotal:  httpRequestsTotal,
		httpDurationMs:     httpDurationMs,
		intakesTotal:       intakesTotal,
		photoFailuresTotal: photoFailuresTotal,
		summaryDurationMs:  summaryDurationMs,
		authFailuresTotal:  authFailuresTotal,
		activeStreams:      activeStreams,
	}, nil
}

func (m *Metrics) RecordHTTPRequest(ctx context.Context, method string, route string, statusCode int, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("http_method", method),
		attribute.String("http_route", route),
		attribute.Int("http_status_code", statusCode),
	)
	m.httpRequestsTotal.Add(ctx, 1, attrs)
	m.httpDurationMs.Record(ctx, milliseconds(duration), attrs)
}

func (m *Metrics) IntakeRecorded(ctx context.Context, action string, withPhoto bool) {
	m.intakesTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("action", action),
		attribute.Bool("with_photo", withPhoto),
	))
}

func (m *Metrics) PhotoUploadFailed(ctx context.Context) {
	m.photoFailuresTotal.Add(ctx, 1)
}

func (m *Metrics) SummaryComputed(ctx context.Context, duration time.Duration) {
	m.summaryDurationMs.Record(ctx, milliseconds(duration))
}

func (m *Metrics) RecordAuthFailure(ctx context.Context, reason string) {
	m.authFailuresTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("reason", reason),
	))
}

func (m *Metrics) StreamOpened(ctx context.Context) {
	m.activeStreams.Add(ctx, 1)
}

func (m *Metrics) StreamClosed(ctx context.Context) {
	m.activeStreams.Add(ctx, -1)
}

func milliseconds(duration time.Duration) float64 {
	return float64(duration) / float64(time.Millisecond)
}
