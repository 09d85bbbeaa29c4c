package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	ordersReceivedTotal  metric.Int64Counter
	orderValidationTotal metric.Int64Counter
	orderIntakeDuration  metric.Float64Histogram
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.ordersReceivedTotal, err = meter.Int64Counter(
		"orders_received_total",
		metric.WithDescription("Total number of orders received"),
		metric.WithUnit("{order}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create orders_received_total counter: %w", err)
	}

	m.orderValidationTotal, err = meter.Int64Counter(
		"order_validation_total",
		metric.WithDescription("Validation outcomes of received orders"),
		metric.WithUnit("{order}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create order_validation_total counter: %w", err)
	}

	m.orderIntakeDuration, err = meter.Float64Histogram(
		"order_intake_duration_seconds",
		metric.WithDescription("Duration of order intake operations"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create order_intake_duration histogram: %w", err)
	}

	return m, nil
}

func (m *Metrics) RecordOrderReceived(ctx context.Context, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	m.ordersReceivedTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status", status),
	))
}

func (m *Metrics) RecordOrderValidation(ctx context.Context, valid bool) {
	outcome := "valid"
	if !valid {
		outcome = "invalid"
	}
	m.orderValidationTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
	))
}

func (m *Metrics) RecordOrderIntakeDuration(ctx context.Context, durationSeconds float64) {
	m.orderIntakeDuration.Record(ctx, durationSeconds)
}
