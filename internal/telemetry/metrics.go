package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ToolCallOutcome is the result of a tool call as far as metrics are concerned.
type ToolCallOutcome string

const (
	ToolCallOutcomeSuccess ToolCallOutcome = "success"
	ToolCallOutcomeError   ToolCallOutcome = "error"
	ToolCallOutcomeUnknown ToolCallOutcome = "not_found"
)

// CustomMetrics records the application-level metrics of sfbilling.
type CustomMetrics interface {
	// RecordToolCall records one tool invocation and how long it took.
	RecordToolCall(ctx context.Context, toolName string, outcome ToolCallOutcome, elapsed time.Duration)
	// RecordStoreQuery records one query against the record store.
	RecordStoreQuery(ctx context.Context, store, operation string, failed bool, elapsed time.Duration)
}

type noopCustomMetrics struct{}

// NewNoopCustomMetrics returns a CustomMetrics that records nothing.
func NewNoopCustomMetrics() CustomMetrics {
	return noopCustomMetrics{}
}

func (noopCustomMetrics) RecordToolCall(context.Context, string, ToolCallOutcome, time.Duration) {}

func (noopCustomMetrics) RecordStoreQuery(context.Context, string, string, bool, time.Duration) {}

type otelCustomMetrics struct {
	toolCalls        metric.Int64Counter
	toolCallDuration metric.Float64Histogram
	storeQueries     metric.Int64Counter
	storeDuration    metric.Float64Histogram
}

// NewOtelCustomMetrics creates the metric instruments on the given meter.
func NewOtelCustomMetrics(meter metric.Meter) (CustomMetrics, error) {
	toolCalls, err := meter.Int64Counter(
		"sfbilling_tool_calls_total",
		metric.WithDescription("Number of tool invocations"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create tool calls counter: %w", err)
	}

	toolCallDuration, err := meter.Float64Histogram(
		"sfbilling_tool_call_duration_seconds",
		metric.WithDescription("Latency of tool invocations"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create tool call duration histogram: %w", err)
	}

	storeQueries, err := meter.Int64Counter(
		"sfbilling_record_store_queries_total",
		metric.WithDescription("Number of record store queries"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create record store queries counter: %w", err)
	}

	storeDuration, err := meter.Float64Histogram(
		"sfbilling_record_store_query_duration_seconds",
		metric.WithDescription("Latency of record store queries"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create record store duration histogram: %w", err)
	}

	return &otelCustomMetrics{
		toolCalls:        toolCalls,
		toolCallDuration: toolCallDuration,
		storeQueries:     storeQueries,
		storeDuration:    storeDuration,
	}, nil
}

func (m *otelCustomMetrics) RecordToolCall(ctx context.Context, toolName string, outcome ToolCallOutcome, elapsed time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("tool", toolName),
		attribute.String("outcome", string(outcome)),
	)
	m.toolCalls.Add(ctx, 1, attrs)
	m.toolCallDuration.Record(ctx, elapsed.Seconds(), attrs)
}

func (m *otelCustomMetrics) RecordStoreQuery(ctx context.Context, store, operation string, failed bool, elapsed time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("store", store),
		attribute.String("operation", operation),
		attribute.Bool("failed", failed),
	)
	m.storeQueries.Add(ctx, 1, attrs)
	m.storeDuration.Record(ctx, elapsed.Seconds(), attrs)
}
