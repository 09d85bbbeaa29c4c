package commands

import (
	"context"
	"log/slog"
	"time"

	"github.com/KyleRui0202/acme-wines/internal/orders/domain"
	"github.com/KyleRui0202/acme-wines/internal/orders/metrics"
	"github.com/KyleRui0202/acme-wines/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

type ObservableCommandHandler struct {
	handler CommandHandler
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewObservableCommandHandler(handler CommandHandler, logger *slog.Logger, metrics *metrics.Metrics) *ObservableCommandHandler {
	return &ObservableCommandHandler{
		handler: handler,
		logger:  logger,
		metrics: metrics,
	}
}

func (o *ObservableCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (*domain.Record, error) {
	ctx, span := telemetry.StartSpan(ctx, "CreateOrderCommand.Handle")
	defer span.End()

	start := time.Now()
	var success bool
	defer func() {
		duration := time.Since(start).Seconds()
		o.metrics.RecordOrderIntakeDuration(ctx, duration)
		o.metrics.RecordOrderReceived(ctx, success)
	}()

	o.logger.InfoContext(ctx, "receiving order", "order_id", cmd.ID)

	rec, err := o.handler.Handle(ctx, cmd)

	if err != nil && rec == nil {
		telemetry.RecordSpanError(span, err)
		o.logger.ErrorContext(ctx, "failed to receive order",
			"error", err,
			"order_id", cmd.ID,
		)
		return nil, err
	}

	valid := rec.Valid != nil && *rec.Valid
	o.metrics.RecordOrderValidation(ctx, valid)

	telemetry.AddSpanAttributes(span,
		attribute.Int64("order.id", rec.ID),
		attribute.Bool("order.valid", valid),
	)

	if err != nil {
		// Saved, but the event publish failed. Keep the record and propagate.
		telemetry.RecordSpanError(span, err)
		o.logger.WarnContext(ctx, "order saved but event publish failed",
			"error", err,
			"order_id", rec.ID,
		)
		return rec, err
	}

	o.logger.InfoContext(ctx, "order received",
		"order_id", rec.ID,
		"valid", valid,
	)

	success = true
	telemetry.SetSpanSuccess(span)

	return rec, nil
}
