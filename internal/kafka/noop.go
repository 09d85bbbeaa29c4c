package kafka

import (
	"context"
	"log/slog"
)

// NoopEventBus logs events without sending them anywhere. Useful for local
// dev and tests where no broker is running.
type NoopEventBus struct{}

// NewNoopEventBus returns a new no-op event publisher.
func NewNoopEventBus() *NoopEventBus {
	return &NoopEventBus{}
}

func (n *NoopEventBus) PublishOrderReceived(_ context.Context, orderID int64, valid bool) error {
	slog.Debug("event::order_received", "order_id", orderID, "valid", valid)
	return nil
}
