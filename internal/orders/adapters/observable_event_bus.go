package adapters

import (
	"context"
	"time"

	"github.com/KyleRui0202/acme-wines/internal/kafka"
	"github.com/KyleRui0202/acme-wines/internal/orders/ports"
	"github.com/KyleRui0202/acme-wines/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

type ObservableEventBus struct {
	bus     ports.EventBus
	topic   string
	metrics *kafka.Metrics
}

func NewObservableEventBus(bus ports.EventBus, topic string, metrics *kafka.Metrics) *ObservableEventBus {
	return &ObservableEventBus{
		bus:     bus,
		topic:   topic,
		metrics: metrics,
	}
}

func (b *ObservableEventBus) PublishOrderReceived(ctx context.Context, orderID int64, valid bool) error {
	ctx, span := telemetry.StartSpan(ctx, "EventBus.PublishOrderReceived")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.Int64("order.id", orderID),
		attribute.Bool("order.valid", valid),
		attribute.String("topic", b.topic),
	)

	start := time.Now()
	err := b.bus.PublishOrderReceived(ctx, orderID, valid)
	b.metrics.RecordPublish(ctx, b.topic, time.Since(start).Seconds(), err == nil)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return err
	}

	telemetry.SetSpanSuccess(span)
	return nil
}
